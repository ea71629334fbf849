// Package session defines the Session record and the Store abstraction
// over the shared key/value service that holds it (spec §4.4). Sessions
// serialize to JSON; the choice is free so long as round-trip is exact.
package session

import "bancho/server/internal/protocol"

// Session is the per-connection record persisted under sessions::<token>.
type Session struct {
	ID         int32                  `json:"id"`
	Token      string                 `json:"token"`
	Presence   protocol.BanchoPresence `json:"presence"`
	Stats      protocol.BanchoStats    `json:"stats"`
	Relax      bool                   `json:"relax"`
	Autopilot  bool                   `json:"autopilot"`

	// ShowCity and AllowPMs are parsed from the login blob but never
	// consulted by any dispatcher branch; they are retained here for
	// forward compatibility (spec §9 open questions).
	ShowCity int `json:"show_city"`
	AllowPMs int `json:"allow_pms"`
}
