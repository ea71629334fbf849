package protocol

import "bancho/server/internal/codec"

// ReadChangeStatus decodes a CTOS_ChangeStatus payload.
func ReadChangeStatus(r *codec.Reader) (ClientStatus, error) {
	var s ClientStatus
	var err error
	if s.Status, err = r.ReadU8(); err != nil {
		return s, err
	}
	if s.StatusText, err = r.ReadString(); err != nil {
		return s, err
	}
	if s.BeatmapChecksum, err = r.ReadString(); err != nil {
		return s, err
	}
	if s.CurrentMods, err = r.ReadU32(); err != nil {
		return s, err
	}
	if s.PlayMode, err = r.ReadU8(); err != nil {
		return s, err
	}
	if s.BeatmapID, err = r.ReadI32(); err != nil {
		return s, err
	}
	return s, nil
}

// ReadChatMessage decodes the shared grammar of CTOS_SendPublicMessage and
// CTOS_SendPrivateMessage: sender, message, target, sender id. The sender
// fields are unused by the dispatcher but still parsed so the cursor
// advances correctly.
func ReadChatMessage(r *codec.Reader) (BanchoMessage, error) {
	var m BanchoMessage
	var err error
	if m.SendingClient, err = r.ReadString(); err != nil {
		return m, err
	}
	if m.Message, err = r.ReadString(); err != nil {
		return m, err
	}
	if m.Target, err = r.ReadString(); err != nil {
		return m, err
	}
	if m.SenderID, err = r.ReadI32(); err != nil {
		return m, err
	}
	return m, nil
}

// ReadChannelJoin decodes a CTOS_ChannelJoin payload: a single channel name.
func ReadChannelJoin(r *codec.Reader) (string, error) {
	return r.ReadString()
}
