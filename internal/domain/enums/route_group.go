package enums

// RouteGroup names a protected application area. Each group requires
// exactly one role; the mapping lives in the access service.
type RouteGroup string

const (
	RouteGroupAdmin       RouteGroup = "ADMIN_AREA"
	RouteGroupProjectLead RouteGroup = "PROJECT_LEAD_AREA"
	RouteGroupContributor RouteGroup = "CONTRIBUTOR_AREA"
	RouteGroupClient      RouteGroup = "CLIENT_AREA"
)

func (g RouteGroup) Valid() bool {
	switch g {
	case RouteGroupAdmin, RouteGroupProjectLead, RouteGroupContributor, RouteGroupClient:
		return true
	default:
		return false
	}
}
