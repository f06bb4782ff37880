package enum

// PositionStatus marks a ledger position as open or closed.
type PositionStatus uint8

const (
	_position_status_beg PositionStatus = iota
	PositionStatusOpen
	PositionStatusClosed
	_position_status_end
)

func (s PositionStatus) IsAvailable() bool {
	return s > _position_status_beg && s < _position_status_end
}

func (s PositionStatus) String() string {
	switch s {
	case PositionStatusOpen:
		return "OPEN"
	case PositionStatusClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}
