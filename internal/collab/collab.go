// Package collab defines the extension surface through which domain route
// groups (trips, exploration, dashboard, itineraries, budgets) plug into
// the gateway.
//
// The gateway owns the pipeline: by the time a collaborator's handler runs,
// the request has passed admission control and carries its session state.
// Collaborators read identity through the middleware accessors and report
// failures as apperr values so the normalizer renders them uniformly.
package collab

import "github.com/gin-gonic/gin"

// Mount installs a collaborator's routes on its group.
type Mount func(rg *gin.RouterGroup)

// Registry binds each domain collaborator to its route prefix under /api.
// Nil entries are skipped, so a deployment can run with any subset of
// domains mounted.
type Registry struct {
	Trips     Mount // /api/trips
	Explore   Mount // /api/explore
	Dashboard Mount // /api/dashboard
	Itinerary Mount // /api/itinerary
	Budget    Mount // /api/budget
}

// Apply mounts every non-nil collaborator under api.
func (r Registry) Apply(api *gin.RouterGroup) {
	mounts := []struct {
		prefix string
		mount  Mount
	}{
		{"/trips", r.Trips},
		{"/explore", r.Explore},
		{"/dashboard", r.Dashboard},
		{"/itinerary", r.Itinerary},
		{"/budget", r.Budget},
	}
	for _, m := range mounts {
		if m.mount != nil {
			m.mount(api.Group(m.prefix))
		}
	}
}
