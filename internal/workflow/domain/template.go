package domain

import "sort"

// Template is a named pipeline blueprint: an ordered stage list with
// dependencies and duration estimates.
type Template struct {
	Name   string
	Stages []StageSpec
}

var builtinTemplates = map[string]Template{
	"wedding": {
		Name: "wedding",
		Stages: []StageSpec{
			{Name: "Planning", Phase: PhasePlanning, EstimatedDurationHours: 8,
				Deliverables: []string{"shot list", "timeline"}},
			{Name: "Shoot", Phase: PhaseShooting, EstimatedDurationHours: 10,
				DependsOn: []string{"Planning"}, Deliverables: []string{"raw captures"}},
			{Name: "Culling", Phase: PhaseEditing, EstimatedDurationHours: 6,
				DependsOn: []string{"Shoot"}},
			{Name: "Editing", Phase: PhaseEditing, EstimatedDurationHours: 40,
				DependsOn: []string{"Culling"}, Deliverables: []string{"edited set"}},
			{Name: "Client Review", Phase: PhaseReview, EstimatedDurationHours: 16,
				DependsOn: []string{"Editing"}},
			{Name: "Delivery", Phase: PhaseDelivery, EstimatedDurationHours: 4,
				DependsOn: []string{"Client Review"}, Deliverables: []string{"final gallery", "album"}},
		},
	},
	"portrait": {
		Name: "portrait",
		Stages: []StageSpec{
			{Name: "Planning", Phase: PhasePlanning, EstimatedDurationHours: 2},
			{Name: "Session", Phase: PhaseShooting, EstimatedDurationHours: 3,
				DependsOn: []string{"Planning"}, Deliverables: []string{"raw captures"}},
			{Name: "Editing", Phase: PhaseEditing, EstimatedDurationHours: 8,
				DependsOn: []string{"Session"}, Deliverables: []string{"retouched set"}},
			{Name: "Delivery", Phase: PhaseDelivery, EstimatedDurationHours: 1,
				DependsOn: []string{"Editing"}, Deliverables: []string{"final gallery"}},
		},
	},
	"commercial": {
		Name: "commercial",
		Stages: []StageSpec{
			{Name: "Brief", Phase: PhasePlanning, EstimatedDurationHours: 6,
				Deliverables: []string{"creative brief"}},
			{Name: "Location Scouting", Phase: PhasePlanning, EstimatedDurationHours: 8,
				DependsOn: []string{"Brief"}},
			{Name: "Shoot", Phase: PhaseShooting, EstimatedDurationHours: 16,
				DependsOn: []string{"Location Scouting"}, Deliverables: []string{"raw captures"}},
			{Name: "Editing", Phase: PhaseEditing, EstimatedDurationHours: 32,
				DependsOn: []string{"Shoot"}},
			{Name: "Client Approval", Phase: PhaseReview, EstimatedDurationHours: 24,
				DependsOn: []string{"Editing"}},
			{Name: "Delivery", Phase: PhaseDelivery, EstimatedDurationHours: 4,
				DependsOn: []string{"Client Approval"}, Deliverables: []string{"licensed assets"}},
		},
	},
}

// BuiltinTemplate returns a built-in pipeline template by name.
func BuiltinTemplate(name string) (Template, bool) {
	tpl, ok := builtinTemplates[name]
	return tpl, ok
}

// BuiltinTemplateNames lists the built-in templates, sorted.
func BuiltinTemplateNames() []string {
	names := make([]string, 0, len(builtinTemplates))
	for name := range builtinTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
