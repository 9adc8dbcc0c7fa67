package ndtp

// BroadbandRecord is the decoded, host-facing form of a broadband
// message: the payload's fields plus the header's timestamp as t0.
type BroadbandRecord struct {
	T0         uint64
	SeqNumber  uint16
	IsSigned   bool
	BitWidth   uint8
	SampleRate uint16
	Channels   []ChannelSamples
}

// SpiketrainRecord is the decoded, host-facing form of a spiketrain
// message: the payload's fields plus the header's timestamp as t0.
type SpiketrainRecord struct {
	T0          uint64
	SeqNumber   uint16
	BinSizeMs   uint32
	SpikeCounts []int64
}

// DecodeRecord unpacks a frame and returns the decoded record as
// either a *BroadbandRecord or a *SpiketrainRecord (exactly one
// non-nil), matching §4.8 step 4: "assign out.t0 <- header.timestamp".
func DecodeRecord(data []byte) (*BroadbandRecord, *SpiketrainRecord, Header, error) {
	msg, st := Unpack(data)
	if !st.Ok() {
		return nil, nil, Header{}, st
	}

	switch {
	case msg.Broadband != nil:
		return &BroadbandRecord{
			T0:         msg.Header.Timestamp,
			SeqNumber:  msg.Header.SeqNumber,
			IsSigned:   msg.Broadband.IsSigned,
			BitWidth:   msg.Broadband.BitWidth,
			SampleRate: msg.Broadband.SampleRate,
			Channels:   msg.Broadband.Channels,
		}, nil, msg.Header, nil
	case msg.Spiketrain != nil:
		return nil, &SpiketrainRecord{
			T0:          msg.Header.Timestamp,
			SeqNumber:   msg.Header.SeqNumber,
			BinSizeMs:   msg.Spiketrain.BinSizeMs,
			SpikeCounts: msg.Spiketrain.SpikeCounts,
		}, msg.Header, nil
	default:
		return nil, nil, msg.Header, nil
	}
}
