package appointment

import (
	"fmt"
	"strings"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

const DefaultDuration = 60

type LineItemKind string

const (
	KindCatalog         LineItemKind = "catalog"
	KindOffer           LineItemKind = "offer"
	KindFreelancerSkill LineItemKind = "freelancer-skill"
)

// LineItem is one requested service. The concrete types are Catalog,
// Offer and FreelancerSkill.
type LineItem interface {
	Kind() LineItemKind
}

// Catalog refers to a stored service; price and duration come from it.
type Catalog struct {
	ServiceID uint
}

// Offer is an ad-hoc promotional line priced by the caller.
type Offer struct {
	Name     string
	Category string
	Price    float64
	Duration int
}

// FreelancerSkill is a skill a freelancer sells directly.
type FreelancerSkill struct {
	Name     string
	Category string
	Price    float64
	Duration int
}

func (Catalog) Kind() LineItemKind         { return KindCatalog }
func (Offer) Kind() LineItemKind           { return KindOffer }
func (FreelancerSkill) Kind() LineItemKind { return KindFreelancerSkill }

// ServiceLookup resolves a catalog service owned by the booking target.
type ServiceLookup func(serviceID uint) (*models.Service, error)

type Quote struct {
	Lines    []models.AppointmentService
	Total    float64
	Duration int
}

// Categories lists the distinct non-empty categories of the quoted lines.
func (q Quote) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, l := range q.Lines {
		c := strings.TrimSpace(l.Category)
		if c == "" || seen[strings.ToLower(c)] {
			continue
		}
		seen[strings.ToLower(c)] = true
		out = append(out, c)
	}
	return out
}

// Price resolves every line to a name, price and duration and sums them.
func Price(items []LineItem, lookup ServiceLookup) (Quote, error) {
	if len(items) == 0 {
		return Quote{}, httperr.Validation("no_services", "At least one service is required")
	}

	var q Quote
	for i, item := range items {
		var line models.AppointmentService

		switch it := item.(type) {
		case Catalog:
			svc, err := lookup(it.ServiceID)
			if err != nil {
				return Quote{}, err
			}
			if !svc.Active {
				return Quote{}, httperr.Validation(
					"service_inactive",
					fmt.Sprintf("Service %q is not available", svc.Name),
				)
			}
			id := svc.ID
			line = models.AppointmentService{
				ServiceID:   &id,
				Name:        svc.Name,
				Category:    svc.Category,
				Price:       svc.EffectivePrice(),
				DurationMin: svc.DurationMin,
			}
		case Offer:
			line = adHocLine(it.Name, it.Category, it.Price, it.Duration)
		case FreelancerSkill:
			line = adHocLine(it.Name, it.Category, it.Price, it.Duration)
		default:
			return Quote{}, httperr.Validation("invalid_service", fmt.Sprintf("Unsupported service line %d", i))
		}

		if line.Price < 0 {
			return Quote{}, httperr.Validation("invalid_price", "Service price cannot be negative")
		}
		if line.DurationMin <= 0 {
			line.DurationMin = DefaultDuration
		}
		line.Kind = string(item.Kind())

		q.Lines = append(q.Lines, line)
		q.Total += line.Price
		q.Duration += line.DurationMin
	}

	return q, nil
}

func adHocLine(name, category string, price float64, duration int) models.AppointmentService {
	if strings.TrimSpace(name) == "" {
		name = "Service"
	}
	return models.AppointmentService{
		Name:        name,
		Category:    category,
		Price:       price,
		DurationMin: duration,
	}
}

// SkillWildcard on a staff member matches every category.
const SkillWildcard = "All"

// HasRequiredSkill reports whether the comma separated staff skills cover
// at least one of the categories. No categories means no requirement.
func HasRequiredSkill(staffSkills string, categories []string) bool {
	if len(categories) == 0 {
		return true
	}

	skills := map[string]bool{}
	for _, s := range strings.Split(staffSkills, ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			skills[s] = true
		}
	}
	if skills[strings.ToLower(SkillWildcard)] {
		return true
	}

	for _, c := range categories {
		if skills[strings.ToLower(strings.TrimSpace(c))] {
			return true
		}
	}
	return false
}
