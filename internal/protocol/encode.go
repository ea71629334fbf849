package protocol

import "bancho/server/internal/codec"

// Each function below appends one complete server→client packet to w,
// following the grammar fixed in the packet registry.

func WriteLoginReply(w *codec.Writer, playerID int32) {
	w.WritePacket(STOC_LoginReply, func(w *codec.Writer) {
		w.WriteI32(playerID)
	})
}

func WriteSendMessage(w *codec.Writer, msg BanchoMessage) {
	w.WritePacket(STOC_SendMessage, func(w *codec.Writer) {
		writeMessage(w, msg)
	})
}

func WritePing(w *codec.Writer) {
	w.WritePacket(STOC_Ping, func(*codec.Writer) {})
}

func WriteHandleOsuUpdate(w *codec.Writer, stats BanchoStats) {
	w.WritePacket(STOC_HandleOsuUpdate, func(w *codec.Writer) {
		w.WriteI32(stats.PlayerID)
		w.WriteU8(stats.Status.Status)
		w.WriteString(stats.Status.StatusText)
		w.WriteString(stats.Status.BeatmapChecksum)
		w.WriteU32(stats.Status.CurrentMods)
		w.WriteU8(stats.Status.PlayMode)
		w.WriteI32(stats.Status.BeatmapID)
	})
}

func WriteHandleUserQuit(w *codec.Writer, playerID int32) {
	w.WritePacket(STOC_HandleUserQuit, func(w *codec.Writer) {
		w.WriteI32(playerID)
		w.WriteBool(false)
	})
}

func WriteSpectatorJoined(w *codec.Writer, playerID int32) {
	w.WritePacket(STOC_SpectatorJoined, func(w *codec.Writer) { w.WriteI32(playerID) })
}

func WriteSpectatorLeft(w *codec.Writer, playerID int32) {
	w.WritePacket(STOC_SpectatorLeft, func(w *codec.Writer) { w.WriteI32(playerID) })
}

func WriteSpectatorCantSpectate(w *codec.Writer, playerID int32) {
	w.WritePacket(STOC_SpectatorCantSpectate, func(w *codec.Writer) { w.WriteI32(playerID) })
}

func WriteAnnounce(w *codec.Writer, message string) {
	w.WritePacket(STOC_Announce, func(w *codec.Writer) { w.WriteString(message) })
}

func WriteChannelJoinSuccess(w *codec.Writer, channelName string) {
	w.WritePacket(STOC_ChannelJoinSuccess, func(w *codec.Writer) { w.WriteString(channelName) })
}

func WriteChannelAvailable(w *codec.Writer, ch BanchoChannel) {
	w.WritePacket(STOC_ChannelAvailable, func(w *codec.Writer) {
		w.WriteString(ch.Name)
		w.WriteString(ch.Topic)
		w.WriteI16(ch.Connected)
	})
}

func WriteChannelRevoked(w *codec.Writer, channelName string) {
	w.WritePacket(STOC_ChannelRevoked, func(w *codec.Writer) { w.WriteString(channelName) })
}

func WriteLoginPermissions(w *codec.Writer, permissions uint8) {
	w.WritePacket(STOC_LoginPermissions, func(w *codec.Writer) { w.WriteU8(permissions) })
}

func WriteProtocolNegotiation(w *codec.Writer, version int32) {
	w.WritePacket(STOC_ProtocolNegotiation, func(w *codec.Writer) { w.WriteI32(version) })
}

func WriteUserPresence(w *codec.Writer, p BanchoPresence) {
	w.WritePacket(STOC_UserPresence, func(w *codec.Writer) {
		w.WriteI32(p.PlayerID)
		w.WriteString(p.Username)
		w.WriteU8(p.Timezone)
		w.WriteU8(p.CountryCode)
		w.WriteU8(p.PlayMode)
		w.WriteF32(p.Longitude)
		w.WriteF32(p.Latitude)
		w.WriteI32(p.PlayerRank)
	})
}

func WriteChannelListingComplete(w *codec.Writer) {
	w.WritePacket(STOC_ChannelListingComplete, func(w *codec.Writer) { w.WriteI32(0) })
}

func WriteUserPmBlocked(w *codec.Writer, msg BanchoMessage) {
	w.WritePacket(STOC_UserPmBlocked, func(w *codec.Writer) { writeMessage(w, msg) })
}

func WriteTargetIsSilenced(w *codec.Writer, msg BanchoMessage) {
	w.WritePacket(STOC_TargetIsSilenced, func(w *codec.Writer) { writeMessage(w, msg) })
}

func WriteVersionUpdateForced(w *codec.Writer) {
	w.WritePacket(STOC_VersionUpdateForced, func(*codec.Writer) {})
}

func WriteSwitchServer(w *codec.Writer, server string) {
	w.WritePacket(STOC_SwitchServer, func(w *codec.Writer) { w.WriteString(server) })
}

func WriteAccountRestricted(w *codec.Writer) {
	w.WritePacket(STOC_AccountRestricted, func(*codec.Writer) {})
}

func WriteRTX(w *codec.Writer, message string) {
	w.WritePacket(STOC_RTX, func(w *codec.Writer) { w.WriteString(message) })
}

func writeMessage(w *codec.Writer, msg BanchoMessage) {
	w.WriteString(msg.SendingClient)
	w.WriteString(msg.Message)
	w.WriteString(msg.Target)
	w.WriteI32(msg.SenderID)
}
