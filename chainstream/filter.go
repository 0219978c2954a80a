package chainstream

// Filter restricts a blocks stream to a height range and/or a block-time
// range. Each bound is optional (nil means unbounded). Both ranges are
// inclusive of their start and exclusive of their stop.
type Filter struct {
	StartHeight *int32
	StopHeight  *int32

	StartBlockTime *uint32
	StopBlockTime  *uint32
}

// allows reports whether a block at height/timestamp passes the filter.
func (f Filter) allows(height int32, timestamp uint32) bool {
	if f.StartHeight != nil && height < *f.StartHeight {
		return false
	}
	if f.StopHeight != nil && height >= *f.StopHeight {
		return false
	}
	if f.StartBlockTime != nil && timestamp < *f.StartBlockTime {
		return false
	}
	if f.StopBlockTime != nil && timestamp >= *f.StopBlockTime {
		return false
	}
	return true
}

// doneByHeight reports whether height has passed beyond any possibility of
// the filter allowing further blocks. In longest-chain mode heights arrive
// strictly increasing, so a StopHeight bound lets the stream stop early
// instead of draining the resolver to exhaustion.
func (f Filter) doneByHeight(height int32) bool {
	return f.StopHeight != nil && height >= *f.StopHeight
}
