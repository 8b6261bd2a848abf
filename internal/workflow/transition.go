package workflow

// EntityKind selects a transition table.
type EntityKind string

const (
	EntityAccount     EntityKind = "account"
	EntityCourse      EntityKind = "course"
	EntityApplication EntityKind = "application"
)

// Actor identifies who is asking for a transition. Human-initiated status
// changes come from a super admin; payment confirmation is system-triggered.
type Actor string

const (
	ActorSuperAdmin Actor = "super_admin"
	ActorSystem     Actor = "system"
)

type edge struct {
	from string
	to   string
}

// The transition tables. Anything absent here is refused before any write.
// Suspended accounts and courses need an explicit reinstatement edge back to
// approved; banned is terminal everywhere.
var transitions = map[EntityKind]map[edge]Actor{
	EntityAccount: {
		{"pending", "approved"}:   ActorSuperAdmin,
		{"approved", "suspended"}: ActorSuperAdmin,
		{"suspended", "approved"}: ActorSuperAdmin, // reinstatement
		{"approved", "banned"}:    ActorSuperAdmin,
		{"suspended", "banned"}:   ActorSuperAdmin,
	},
	EntityCourse: {
		{"pending", "approved"}:   ActorSuperAdmin,
		{"approved", "suspended"}: ActorSuperAdmin,
		{"suspended", "approved"}: ActorSuperAdmin, // reinstatement
		{"approved", "banned"}:    ActorSuperAdmin,
		{"suspended", "banned"}:   ActorSuperAdmin,
	},
	EntityApplication: {
		{"in_review", "pending_payment"}:         ActorSuperAdmin,
		{"in_review", "approved"}:                ActorSuperAdmin, // free courses skip payment
		{"in_review", "rejected"}:                ActorSuperAdmin,
		{"in_review", "waitlisted"}:              ActorSuperAdmin,
		{"pending_payment", "payment_completed"}: ActorSystem,
		{"payment_completed", "approved"}:        ActorSuperAdmin,
		{"waitlisted", "in_review"}:              ActorSuperAdmin,
		{"waitlisted", "rejected"}:               ActorSuperAdmin,
	},
}

// CanTransition reports whether actor may move an entity of the given kind
// from one status to another. Pure; no I/O.
func CanTransition(kind EntityKind, from, to string, actor Actor) bool {
	table, ok := transitions[kind]
	if !ok {
		return false
	}
	permitted, ok := table[edge{from, to}]
	return ok && permitted == actor
}
