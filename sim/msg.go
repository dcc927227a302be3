package sim

// A RemotePort names the port at the other end of a connection.
type RemotePort string

// A Msg travels from one port to another.
type Msg interface {
	Meta() *MsgMeta
}

// MsgMeta is carried by every message.
type MsgMeta struct {
	ID           string
	Src, Dst     RemotePort
	TrafficBytes int
}

// Rsp answers the request whose ID GetRspTo returns.
type Rsp interface {
	Msg
	GetRspTo() string
}

// SendError tells the sender that the outgoing buffer is full and the
// message must be retried later.
type SendError struct{}

// NewSendError creates a SendError.
func NewSendError() *SendError {
	return &SendError{}
}

// HookPosConnDeliver marks a connection delivering a message.
var HookPosConnDeliver = &HookPos{Name: "Conn Deliver"}

// A Connection moves messages between the ports plugged into it.
type Connection interface {
	Named
	Hookable

	PlugIn(port Port)
	NotifyAvailable(port Port)
	NotifySend()
}
