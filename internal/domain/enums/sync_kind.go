package enums

// SyncKind distinguishes the triggers that can start a synchronization
// cycle. The re-entrancy guard in the sync job is keyed by kind.
type SyncKind string

const (
	SyncKindPeriodic   SyncKind = "periodic"
	SyncKindStartup    SyncKind = "startup"
	SyncKindNavigation SyncKind = "navigation"
	SyncKindLogin      SyncKind = "login"
	SyncKindManual     SyncKind = "manual"
)

func (k SyncKind) Valid() bool {
	switch k {
	case SyncKindPeriodic, SyncKindStartup, SyncKindNavigation, SyncKindLogin, SyncKindManual:
		return true
	default:
		return false
	}
}
