package services

import (
	"context"
	"sort"
	"time"

	"helpdesk-system/models"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// ReportService assembles the admin analytics dashboard from ticket and user
// snapshots. The aggregation functions are pure so they can be tested on
// fixture data.
type ReportService struct {
	app core.App
}

func NewReportService(app core.App) *ReportService {
	return &ReportService{app: app}
}

type PriorityCount struct {
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type TrendPoint struct {
	Date     string `json:"date"`
	Created  int    `json:"created"`
	Resolved int    `json:"resolved"`
}

type TechnicianCount struct {
	TechnicianID string `json:"technician_id"`
	Name         string `json:"name"`
	Count        int    `json:"count"`
}

type Dashboard struct {
	TotalTickets          int               `json:"total_tickets"`
	UnassignedBacklog     int               `json:"unassigned_backlog"`
	AvgResolutionHours    decimal.Decimal   `json:"avg_resolution_hours"`
	AvgFeedbackRating     decimal.Decimal   `json:"avg_feedback_rating"`
	ByPriority            []PriorityCount   `json:"by_priority"`
	TopCategories         []CategoryCount   `json:"top_categories"`
	Trends                []TrendPoint      `json:"trends"`
	ResolvedPerTechnician []TechnicianCount `json:"resolved_per_technician"`
	TechnicianWorkload    []TechnicianCount `json:"technician_workload"`
}

func (s *ReportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	tickets, err := s.ticketSnapshots()
	if err != nil {
		return nil, err
	}

	users, err := s.userSnapshots()
	if err != nil {
		return nil, err
	}

	avgRating, err := s.averageFeedbackRating()
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TotalTickets:          len(tickets),
		UnassignedBacklog:     len(UnassignedTickets(tickets)),
		AvgResolutionHours:    AverageResolutionHours(tickets),
		AvgFeedbackRating:     avgRating,
		ByPriority:            TicketsByPriority(tickets),
		TopCategories:         MostCommonCategories(tickets),
		Trends:                TicketTrends(tickets, time.Now()),
		ResolvedPerTechnician: ResolvedPerTechnician(tickets, users),
		TechnicianWorkload:    TechnicianWorkload(tickets, users),
	}, nil
}

// AverageResolutionHours averages created->updated deltas over resolved
// tickets, rounded to one decimal place.
func AverageResolutionHours(tickets []models.Ticket) decimal.Decimal {
	total := decimal.Zero
	count := 0

	for _, t := range tickets {
		if t.Status != models.StatusResolved || t.CreatedAt.IsZero() || t.UpdatedAt.IsZero() {
			continue
		}
		hours := t.UpdatedAt.Sub(t.CreatedAt).Hours()
		total = total.Add(decimal.NewFromFloat(hours))
		count++
	}

	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(1)
}

func TicketsByPriority(tickets []models.Ticket) []PriorityCount {
	counts := make([]PriorityCount, 0, len(models.Priorities))
	for _, priority := range models.Priorities {
		n := 0
		for _, t := range tickets {
			if t.Priority == priority {
				n++
			}
		}
		counts = append(counts, PriorityCount{Priority: priority, Count: n})
	}
	return counts
}

// MostCommonCategories returns category counts sorted descending.
func MostCommonCategories(tickets []models.Ticket) []CategoryCount {
	byCategory := map[string]int{}
	for _, t := range tickets {
		category := t.Category
		if category == "" {
			category = "Uncategorized"
		}
		byCategory[category]++
	}

	counts := make([]CategoryCount, 0, len(byCategory))
	for category, n := range byCategory {
		counts = append(counts, CategoryCount{Category: category, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Category < counts[j].Category
	})
	return counts
}

// TicketTrends buckets created and resolved tickets into the last 30 days.
func TicketTrends(tickets []models.Ticket, now time.Time) []TrendPoint {
	const days = 30

	points := make([]TrendPoint, 0, days)
	index := map[string]int{}
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		index[date] = len(points)
		points = append(points, TrendPoint{Date: date})
	}

	for _, t := range tickets {
		created := t.CreatedAt.Format("2006-01-02")
		if i, ok := index[created]; ok {
			points[i].Created++
		}

		if t.Status == models.StatusResolved {
			resolved := t.UpdatedAt.Format("2006-01-02")
			if i, ok := index[resolved]; ok {
				points[i].Resolved++
			}
		}
	}

	return points
}

// ResolvedPerTechnician counts resolved tickets per technician, including
// technicians with zero resolutions.
func ResolvedPerTechnician(tickets []models.Ticket, users []models.User) []TechnicianCount {
	counts := technicianCounts(users)

	for _, t := range tickets {
		if t.Status != models.StatusResolved || t.AssignedTo == "" {
			continue
		}
		for i := range counts {
			if counts[i].TechnicianID == t.AssignedTo {
				counts[i].Count++
				break
			}
		}
	}

	return counts
}

// TechnicianWorkload counts Open and In Progress tickets per technician.
func TechnicianWorkload(tickets []models.Ticket, users []models.User) []TechnicianCount {
	counts := technicianCounts(users)

	for _, t := range tickets {
		if t.AssignedTo == "" || (t.Status != models.StatusOpen && t.Status != models.StatusInProgress) {
			continue
		}
		for i := range counts {
			if counts[i].TechnicianID == t.AssignedTo {
				counts[i].Count++
				break
			}
		}
	}

	return counts
}

// UnassignedTickets returns the open backlog nobody has picked up.
func UnassignedTickets(tickets []models.Ticket) []models.Ticket {
	backlog := []models.Ticket{}
	for _, t := range tickets {
		if t.AssignedTo == "" && t.Status != models.StatusClosed {
			backlog = append(backlog, t)
		}
	}
	return backlog
}

func technicianCounts(users []models.User) []TechnicianCount {
	counts := []TechnicianCount{}
	for _, u := range users {
		if u.Role != models.RoleTechnician {
			continue
		}
		name := u.Name
		if name == "" {
			name = u.Email
		}
		counts = append(counts, TechnicianCount{TechnicianID: u.ID, Name: name})
	}
	return counts
}

func (s *ReportService) ticketSnapshots() ([]models.Ticket, error) {
	records := []*core.Record{}
	if err := s.app.RecordQuery("tickets").OrderBy("created DESC").All(&records); err != nil {
		return nil, err
	}

	tickets := make([]models.Ticket, 0, len(records))
	for _, r := range records {
		tickets = append(tickets, TicketFromRecord(r))
	}
	return tickets, nil
}

func (s *ReportService) userSnapshots() ([]models.User, error) {
	records := []*core.Record{}
	if err := s.app.RecordQuery("users").All(&records); err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(records))
	for _, r := range records {
		users = append(users, UserFromRecord(r))
	}
	return users, nil
}

// averageFeedbackRating aggregates in SQL; ratings live in their own
// collection and do not need a full scan.
func (s *ReportService) averageFeedbackRating() (decimal.Decimal, error) {
	var row struct {
		Avg *float64 `db:"avg_rating"`
	}

	err := s.app.DB().
		NewQuery("SELECT AVG(rating) AS avg_rating FROM ticket_feedback").
		One(&row)
	if err != nil {
		return decimal.Zero, err
	}
	if row.Avg == nil {
		return decimal.Zero, nil
	}

	return decimal.NewFromFloat(*row.Avg).Round(2), nil
}
