// Package mem defines the messages exchanged with memory components and the
// sparse byte storage behind them.
package mem

import (
	"github.com/sarchlab/membist/sim"
)

// Header sizes used for traffic accounting.
const (
	reqHeaderBytes = 12
	rspHeaderBytes = 4
)

// AccessReq is a read or a write sent to a memory.
type AccessReq interface {
	sim.Msg
	GetAddress() uint64
	GetByteSize() uint64
}

// AccessRsp answers exactly one AccessReq.
type AccessRsp interface {
	sim.Rsp
}

// A ReadReq asks for AccessByteSize bytes starting at Address.
type ReadReq struct {
	sim.MsgMeta

	Address        uint64
	AccessByteSize uint64
}

// Meta returns the message meta.
func (r *ReadReq) Meta() *sim.MsgMeta { return &r.MsgMeta }

// GetAddress returns the first byte address read.
func (r *ReadReq) GetAddress() uint64 { return r.Address }

// GetByteSize returns the number of bytes read.
func (r *ReadReq) GetByteSize() uint64 { return r.AccessByteSize }

// A WriteReq stores Data at Address. Bytes whose DirtyMask entry is false
// are left untouched; a nil DirtyMask writes every byte.
type WriteReq struct {
	sim.MsgMeta

	Address   uint64
	Data      []byte
	DirtyMask []bool
}

// Meta returns the message meta.
func (r *WriteReq) Meta() *sim.MsgMeta { return &r.MsgMeta }

// GetAddress returns the first byte address written.
func (r *WriteReq) GetAddress() uint64 { return r.Address }

// GetByteSize returns the number of bytes carried.
func (r *WriteReq) GetByteSize() uint64 { return uint64(len(r.Data)) }

// ReqBuilder fills the routing and address of a request. Finish it with Read
// or Write.
type ReqBuilder struct {
	src, dst sim.RemotePort
	address  uint64
}

// WithSrc sets the port the request leaves from.
func (b ReqBuilder) WithSrc(src sim.RemotePort) ReqBuilder {
	b.src = src
	return b
}

// WithDst sets the memory port the request goes to.
func (b ReqBuilder) WithDst(dst sim.RemotePort) ReqBuilder {
	b.dst = dst
	return b
}

// WithAddress sets the byte address.
func (b ReqBuilder) WithAddress(address uint64) ReqBuilder {
	b.address = address
	return b
}

func (b ReqBuilder) meta(traffic int) sim.MsgMeta {
	return sim.MsgMeta{
		ID:           sim.GetIDGenerator().Generate(),
		Src:          b.src,
		Dst:          b.dst,
		TrafficBytes: traffic,
	}
}

// Read builds a request reading byteSize bytes.
func (b ReqBuilder) Read(byteSize uint64) *ReadReq {
	return &ReadReq{
		MsgMeta:        b.meta(reqHeaderBytes),
		Address:        b.address,
		AccessByteSize: byteSize,
	}
}

// Write builds a request writing data under the byte mask.
func (b ReqBuilder) Write(data []byte, mask []bool) *WriteReq {
	return &WriteReq{
		MsgMeta:   b.meta(reqHeaderBytes + len(data)),
		Address:   b.address,
		Data:      data,
		DirtyMask: mask,
	}
}

// A DataReadyRsp carries the bytes a ReadReq asked for.
type DataReadyRsp struct {
	sim.MsgMeta

	RespondTo string
	Data      []byte
}

// Meta returns the message meta.
func (r *DataReadyRsp) Meta() *sim.MsgMeta { return &r.MsgMeta }

// GetRspTo returns the ID of the read.
func (r *DataReadyRsp) GetRspTo() string { return r.RespondTo }

// A WriteDoneRsp tells a WriteReq has been applied.
type WriteDoneRsp struct {
	sim.MsgMeta

	RespondTo string
}

// Meta returns the message meta.
func (r *WriteDoneRsp) Meta() *sim.MsgMeta { return &r.MsgMeta }

// GetRspTo returns the ID of the write.
func (r *WriteDoneRsp) GetRspTo() string { return r.RespondTo }

func replyMeta(req sim.Msg, traffic int) sim.MsgMeta {
	return sim.MsgMeta{
		ID:           sim.GetIDGenerator().Generate(),
		Src:          req.Meta().Dst,
		Dst:          req.Meta().Src,
		TrafficBytes: traffic,
	}
}

// ReplyData answers a read with data, going back the way the read came.
func ReplyData(req *ReadReq, data []byte) *DataReadyRsp {
	return &DataReadyRsp{
		MsgMeta:   replyMeta(req, rspHeaderBytes+len(data)),
		RespondTo: req.ID,
		Data:      data,
	}
}

// ReplyWriteDone acknowledges a write.
func ReplyWriteDone(req *WriteReq) *WriteDoneRsp {
	return &WriteDoneRsp{
		MsgMeta:   replyMeta(req, rspHeaderBytes),
		RespondTo: req.ID,
	}
}
