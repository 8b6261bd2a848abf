package workflow

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type allowedEdge struct {
	kind  EntityKind
	from  string
	to    string
	actor Actor
}

var accountStatuses = []string{"pending", "approved", "suspended", "banned"}
var applicationStatuses = []string{
	"in_review", "pending_payment", "payment_completed", "approved", "rejected", "waitlisted",
}

// The full whitelist, spelled out independently of the production table.
var allowed = map[allowedEdge]bool{
	{EntityAccount, "pending", "approved", ActorSuperAdmin}:   true,
	{EntityAccount, "approved", "suspended", ActorSuperAdmin}: true,
	{EntityAccount, "suspended", "approved", ActorSuperAdmin}: true,
	{EntityAccount, "approved", "banned", ActorSuperAdmin}:    true,
	{EntityAccount, "suspended", "banned", ActorSuperAdmin}:   true,

	{EntityCourse, "pending", "approved", ActorSuperAdmin}:   true,
	{EntityCourse, "approved", "suspended", ActorSuperAdmin}: true,
	{EntityCourse, "suspended", "approved", ActorSuperAdmin}: true,
	{EntityCourse, "approved", "banned", ActorSuperAdmin}:    true,
	{EntityCourse, "suspended", "banned", ActorSuperAdmin}:   true,

	{EntityApplication, "in_review", "pending_payment", ActorSuperAdmin}:     true,
	{EntityApplication, "in_review", "approved", ActorSuperAdmin}:            true,
	{EntityApplication, "in_review", "rejected", ActorSuperAdmin}:            true,
	{EntityApplication, "in_review", "waitlisted", ActorSuperAdmin}:          true,
	{EntityApplication, "pending_payment", "payment_completed", ActorSystem}: true,
	{EntityApplication, "payment_completed", "approved", ActorSuperAdmin}:    true,
	{EntityApplication, "waitlisted", "in_review", ActorSuperAdmin}:          true,
	{EntityApplication, "waitlisted", "rejected", ActorSuperAdmin}:           true,
}

// Every combination not explicitly whitelisted must be refused.
func TestCanTransitionExhaustive(t *testing.T) {
	actors := []Actor{ActorSuperAdmin, ActorSystem}

	statusSets := map[EntityKind][]string{
		EntityAccount:     accountStatuses,
		EntityCourse:      accountStatuses,
		EntityApplication: applicationStatuses,
	}

	for kind, statuses := range statusSets {
		for _, from := range statuses {
			for _, to := range statuses {
				for _, actor := range actors {
					name := fmt.Sprintf("%s/%s->%s/%s", kind, from, to, actor)
					t.Run(name, func(t *testing.T) {
						want := allowed[allowedEdge{kind, from, to, actor}]
						assert.Equal(t, want, CanTransition(kind, from, to, actor))
					})
				}
			}
		}
	}
}

func TestCanTransitionUnknownInputs(t *testing.T) {
	assert.False(t, CanTransition("unknown", "pending", "approved", ActorSuperAdmin))
	assert.False(t, CanTransition(EntityCourse, "bogus", "approved", ActorSuperAdmin))
	assert.False(t, CanTransition(EntityCourse, "pending", "bogus", ActorSuperAdmin))
	assert.False(t, CanTransition(EntityCourse, "pending", "approved", "learner"))
	assert.False(t, CanTransition(EntityCourse, "pending", "approved", ""))
}

func TestBannedIsTerminal(t *testing.T) {
	for _, kind := range []EntityKind{EntityAccount, EntityCourse} {
		for _, to := range accountStatuses {
			assert.False(t, CanTransition(kind, "banned", to, ActorSuperAdmin), "banned -> %s", to)
			assert.False(t, CanTransition(kind, "banned", to, ActorSystem), "banned -> %s", to)
		}
	}
	for _, from := range []string{"approved", "rejected"} {
		for _, to := range applicationStatuses {
			assert.False(t, CanTransition(EntityApplication, from, to, ActorSuperAdmin), "%s -> %s", from, to)
			assert.False(t, CanTransition(EntityApplication, from, to, ActorSystem), "%s -> %s", from, to)
		}
	}
}
