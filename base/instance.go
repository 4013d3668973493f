package base

// InstanceState is an enumeration to indicate what state the instance is in.
type InstanceState uint8

const (
	// InstanceNotCreated is the default InstanceState that represents an uninitiated instance.
	InstanceNotCreated InstanceState = iota // 0
	// InstanceInProgress indicates that the instance is in a intermediate step.
	InstanceInProgress // 1
	// InstanceReady indicates that the instance is available for connections.
	InstanceReady // 2
	// InstanceGone indicates that the instance is deleted or being deleted.
	InstanceGone // 3
	// InstanceFailed indicates that the instance reached a state it will not leave on its own.
	InstanceFailed // 4
)

func (i InstanceState) String() string {
	switch i {
	case InstanceNotCreated:
		return "not created"
	case InstanceInProgress:
		return "in progress"
	case InstanceReady:
		return "ready"
	case InstanceGone:
		return "deleted"
	case InstanceFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StateFromRDSStatus maps a DBInstanceStatus string to an InstanceState.
//
// Possible instance statuses: https://docs.aws.amazon.com/AmazonRDS/latest/UserGuide/accessing-monitoring.html#Overview.DBInstance.Status
func StateFromRDSStatus(status string) InstanceState {
	switch status {
	case "available":
		return InstanceReady
	case "deleted", "deleting":
		return InstanceGone
	case "failed", "incompatible-restore", "incompatible-parameters":
		return InstanceFailed
	case "":
		return InstanceNotCreated
	default:
		return InstanceInProgress
	}
}
