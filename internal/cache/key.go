package cache

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"slices"

	"github.com/goccy/go-json"

	"github.com/sells-group/finplanner/internal/model"
)

// Key fingerprints the planner inputs. Goal order does not affect a plan, so
// goals are sorted before hashing.
func Key(p model.UserProfile, goals []model.Goal) string {
	sorted := slices.Clone(goals)
	slices.SortFunc(sorted, func(a, b model.Goal) int {
		return cmp.Or(
			cmp.Compare(a.ID, b.ID),
			cmp.Compare(a.Horizon, b.Horizon),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.TargetAmount, b.TargetAmount),
			cmp.Compare(a.Priority, b.Priority),
		)
	})
	if sorted == nil {
		sorted = []model.Goal{}
	}

	// Marshal of plain structs cannot fail.
	b, _ := json.Marshal(model.PlanInput{Profile: p, Goals: sorted})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
