package base

// Operation identifies the call a shim method is making. It is used to
// name logger sessions and to prefix wrapped errors.
type Operation uint8

const (
	CreateOp Operation = iota + 1
	WaitOp
	EndpointOp
	ConnectOp
	QueryOp
	CloseOp
	ListOp
	ModifyOp
	DeleteOp
	SnapshotOp
)

func (o Operation) String() string {
	switch o {
	case CreateOp:
		return "create-instance"
	case WaitOp:
		return "wait-for-available"
	case EndpointOp:
		return "get-endpoint"
	case ConnectOp:
		return "open-connection"
	case QueryOp:
		return "execute-query"
	case CloseOp:
		return "close-connection"
	case ListOp:
		return "list-instances"
	case ModifyOp:
		return "modify-instance"
	case DeleteOp:
		return "delete-instance"
	case SnapshotOp:
		return "create-snapshot"
	default:
		return "unknown"
	}
}
