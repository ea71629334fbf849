// Package protocol defines the Bancho packet registry: the closed set of
// numeric packet ids exchanged between client and server, the structs
// carried in their payloads, and the encode/decode functions that apply
// the codec package's primitives to each packet's fixed grammar.
package protocol

// Client → server packet ids (the subset this server actually dispatches).
const (
	CTOS_ChangeStatus        int16 = 0
	CTOS_SendPublicMessage   int16 = 1
	CTOS_Ping                int16 = 4
	CTOS_SendPrivateMessage  int16 = 25
	CTOS_ChannelJoin         int16 = 63
)

// Server → client packet ids (the subset this server emits).
const (
	STOC_LoginReply             int16 = 5
	STOC_SendMessage            int16 = 7
	STOC_Ping                   int16 = 8
	STOC_HandleOsuUpdate        int16 = 11
	STOC_HandleUserQuit         int16 = 12
	STOC_SpectatorJoined        int16 = 13
	STOC_SpectatorLeft          int16 = 14
	STOC_SpectatorCantSpectate  int16 = 22
	STOC_Announce              int16 = 24
	STOC_ChannelJoinSuccess     int16 = 64
	STOC_ChannelAvailable       int16 = 65
	STOC_ChannelRevoked         int16 = 66
	STOC_LoginPermissions       int16 = 71
	STOC_ProtocolNegotiation    int16 = 75
	STOC_UserPresence           int16 = 83
	STOC_ChannelListingComplete int16 = 89
	STOC_UserPmBlocked          int16 = 94
	STOC_TargetIsSilenced       int16 = 95
	STOC_VersionUpdateForced    int16 = 97
	STOC_SwitchServer           int16 = 103
	STOC_AccountRestricted      int16 = 104
	STOC_RTX                    int16 = 105
)

// Multiplayer match packet ids. The grammar for the structures these
// packets would carry is declared in structs.go (Match, ScoreFrame, ReplayFrame)
// per the spec's directive that packet definitions are given even though
// the match state machine itself is a non-goal. Nothing in this package
// encodes or decodes them; they exist so a future match engine has a
// stable wire contract to build against.
const (
	STOC_MatchNew       int16 = 26
	STOC_MatchUpdate    int16 = 27
	STOC_MatchStart     int16 = 30
	STOC_MatchScoreUpdate int16 = 35
	STOC_MatchDisband   int16 = 28
)

// LoginReply error codes used in the payload of STOC_LoginReply.
const (
	LoginErrorGeneric    int32 = -1
	LoginErrorStatsMissing int32 = -5
)

// Mod bitmask flags relevant to leaderboard toggles (§4.6).
const (
	ModRelax     uint32 = 0x80
	ModAutopilot uint32 = 0x2000
)
