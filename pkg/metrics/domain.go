package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DomainMetrics counts business events.
type DomainMetrics struct {
	membership *prometheus.CounterVec
	posts      *prometheus.CounterVec
	petViews   prometheus.Counter
	adoptions  prometheus.Counter
	uploads    *prometheus.CounterVec
}

// NewDomainMetrics registers the domain counters on the provided registerer.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	m := &DomainMetrics{
		membership: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "group_membership_transitions_total",
			Help: "Applied membership transitions by action.",
		}, []string{"action"}),
		posts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "group_posts_total",
			Help: "Group post lifecycle events by resulting status.",
		}, []string{"status"}),
		petViews: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pet_views_total",
			Help: "Counted pet detail views after debounce.",
		}),
		adoptions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pet_adoptions_total",
			Help: "Completed adoptions.",
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uploads_total",
			Help: "Image uploads by outcome.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.membership, m.posts, m.petViews, m.adoptions, m.uploads)
	return m
}

func (m *DomainMetrics) MembershipTransition(action string) {
	if m == nil || m.membership == nil {
		return
	}
	m.membership.WithLabelValues(normalizeLabel(action)).Inc()
}

func (m *DomainMetrics) PostEvent(status string) {
	if m == nil || m.posts == nil {
		return
	}
	m.posts.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *DomainMetrics) PetViewed() {
	if m == nil || m.petViews == nil {
		return
	}
	m.petViews.Inc()
}

func (m *DomainMetrics) PetAdopted() {
	if m == nil || m.adoptions == nil {
		return
	}
	m.adoptions.Inc()
}

func (m *DomainMetrics) Upload(result string) {
	if m == nil || m.uploads == nil {
		return
	}
	m.uploads.WithLabelValues(normalizeLabel(result)).Inc()
}
