package services

import (
	"testing"
	"time"

	"helpdesk-system/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureTickets(now time.Time) []models.Ticket {
	return []models.Ticket{
		{
			ID:         "t1",
			Status:     models.StatusResolved,
			Priority:   "High",
			Category:   "Hardware",
			AssignedTo: "tech-1",
			CreatedAt:  now.Add(-10 * time.Hour),
			UpdatedAt:  now.Add(-6 * time.Hour),
		},
		{
			ID:         "t2",
			Status:     models.StatusResolved,
			Priority:   "Low",
			Category:   "Hardware",
			AssignedTo: "tech-2",
			CreatedAt:  now.Add(-8 * time.Hour),
			UpdatedAt:  now.Add(-6 * time.Hour),
		},
		{
			ID:         "t3",
			Status:     models.StatusInProgress,
			Priority:   "High",
			Category:   "Software",
			AssignedTo: "tech-1",
			CreatedAt:  now.Add(-2 * time.Hour),
			UpdatedAt:  now.Add(-time.Hour),
		},
		{
			ID:        "t4",
			Status:    models.StatusOpen,
			Priority:  "Medium",
			Category:  "Network",
			CreatedAt: now.Add(-time.Hour),
			UpdatedAt: now.Add(-time.Hour),
		},
	}
}

func fixtureUsers() []models.User {
	return []models.User{
		{ID: "tech-1", Name: "Alice", Role: models.RoleTechnician},
		{ID: "tech-2", Name: "Bob", Role: models.RoleTechnician},
		{ID: "tech-3", Name: "Carol", Role: models.RoleTechnician},
		{ID: "user-1", Name: "Dave", Role: models.RoleUser},
	}
}

func TestAverageResolutionHours(t *testing.T) {
	now := time.Now()
	tickets := fixtureTickets(now)

	// t1 took 4h, t2 took 2h; the open tickets do not count.
	avg := AverageResolutionHours(tickets)
	assert.True(t, avg.Equal(decimal.NewFromFloat(3.0)), "got %s", avg)
}

func TestAverageResolutionHours_NoResolved(t *testing.T) {
	avg := AverageResolutionHours([]models.Ticket{
		{Status: models.StatusOpen},
	})
	assert.True(t, avg.IsZero())
}

func TestTicketsByPriority(t *testing.T) {
	counts := TicketsByPriority(fixtureTickets(time.Now()))

	require.Len(t, counts, 3)
	assert.Equal(t, PriorityCount{Priority: "Low", Count: 1}, counts[0])
	assert.Equal(t, PriorityCount{Priority: "Medium", Count: 1}, counts[1])
	assert.Equal(t, PriorityCount{Priority: "High", Count: 2}, counts[2])
}

func TestMostCommonCategories(t *testing.T) {
	counts := MostCommonCategories(fixtureTickets(time.Now()))

	require.Len(t, counts, 3)
	assert.Equal(t, CategoryCount{Category: "Hardware", Count: 2}, counts[0])

	// Ties break alphabetically.
	assert.Equal(t, CategoryCount{Category: "Network", Count: 1}, counts[1])
	assert.Equal(t, CategoryCount{Category: "Software", Count: 1}, counts[2])
}

func TestMostCommonCategories_EmptyCategory(t *testing.T) {
	counts := MostCommonCategories([]models.Ticket{{Category: ""}})

	require.Len(t, counts, 1)
	assert.Equal(t, "Uncategorized", counts[0].Category)
}

func TestTicketTrends(t *testing.T) {
	now := time.Now()
	points := TicketTrends(fixtureTickets(now), now)

	require.Len(t, points, 30)

	today := now.Format("2006-01-02")
	last := points[len(points)-1]
	assert.Equal(t, today, last.Date)

	// All fixture timestamps fall within the last day or two, so the
	// window totals must match the fixture.
	created, resolved := 0, 0
	for _, p := range points {
		created += p.Created
		resolved += p.Resolved
	}
	assert.Equal(t, 4, created)
	assert.Equal(t, 2, resolved)
}

func TestResolvedPerTechnician(t *testing.T) {
	counts := ResolvedPerTechnician(fixtureTickets(time.Now()), fixtureUsers())

	require.Len(t, counts, 3)

	byID := map[string]int{}
	for _, c := range counts {
		byID[c.TechnicianID] = c.Count
	}
	assert.Equal(t, 1, byID["tech-1"])
	assert.Equal(t, 1, byID["tech-2"])
	assert.Equal(t, 0, byID["tech-3"])
}

func TestTechnicianWorkload(t *testing.T) {
	counts := TechnicianWorkload(fixtureTickets(time.Now()), fixtureUsers())

	byID := map[string]int{}
	for _, c := range counts {
		byID[c.TechnicianID] = c.Count
	}

	// Only t3 is active and assigned; resolved tickets are not workload.
	assert.Equal(t, 1, byID["tech-1"])
	assert.Equal(t, 0, byID["tech-2"])
	assert.Equal(t, 0, byID["tech-3"])
}

func TestUnassignedTickets(t *testing.T) {
	now := time.Now()
	tickets := append(fixtureTickets(now), models.Ticket{
		ID:     "t5",
		Status: models.StatusClosed,
	})

	backlog := UnassignedTickets(tickets)

	require.Len(t, backlog, 1)
	assert.Equal(t, "t4", backlog[0].ID)
}
