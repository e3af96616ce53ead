package signing

import (
	"context"
	"fmt"

	"onboardflow/employee"
)

// EmployeeReader resolves the employee whose package is being generated.
type EmployeeReader interface {
	GetByID(ctx context.Context, id string) (employee.Record, error)
}

// StandardGenerator produces the standard onboarding document set, tailored
// to the employee's engagement. It stands in for the external document
// generation service behind the same interface, so swapping in a remote
// client later touches only the bootstrap.
type StandardGenerator struct {
	employees EmployeeReader
}

func NewStandardGenerator(employees EmployeeReader) *StandardGenerator {
	return &StandardGenerator{employees: employees}
}

// GeneratePackage returns the ordered document specs for the employee.
// Contractors sign a services agreement instead of an employment contract and
// carry no benefits enrollment.
func (g *StandardGenerator) GeneratePackage(ctx context.Context, employeeID string) ([]ItemSpec, error) {
	rec, err := g.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("signing: generate package: %w", err)
	}

	if rec.EmploymentType == "contractor" {
		return []ItemSpec{
			{Type: "services_agreement", Required: true},
			{Type: "nda", Required: true},
			{Type: "tax_declaration", Required: true},
		}, nil
	}

	specs := []ItemSpec{
		{Type: "employment_contract", Required: true},
		{Type: "nda", Required: true},
		{Type: "tax_declaration", Required: true},
		{Type: "benefits_enrollment", Required: false},
	}
	if rec.EmploymentType == "intern" {
		// Interns get the fixed-term addendum in place of benefits.
		specs[3] = ItemSpec{Type: "internship_addendum", Required: true}
	}
	return specs, nil
}
