package mailer

import (
	"fmt"
	"strings"
	"time"

	"github.com/farmcare-io/farmcare-engine/pkg/inference"
	"github.com/farmcare-io/farmcare-engine/pkg/models"
)

// ReportInput carries everything the treatment summary email needs.
type ReportInput struct {
	FarmerName     string
	Crop           string
	PredictedClass string
	Severity       float64
	Location       string
	Acres          float64
	Pesticides     []string
	Schedules      []inference.ScheduleEntry
	GeneratedAt    time.Time
}

// Subject returns the email subject line for a treatment report.
func Subject(input *ReportInput) string {
	return fmt.Sprintf("FarmCare Treatment Schedule: %s (%s)", input.Crop, displayClass(input.PredictedClass))
}

func displayClass(predictedClass string) string {
	d := models.PlantDiagnosis{PredictedClass: predictedClass}
	return d.DisplayClass()
}

// BuildReport renders the plaintext treatment summary sent after a completed
// diagnosis.
func BuildReport(input *ReportInput) string {
	disease := displayClass(input.PredictedClass)

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", input.FarmerName)
	b.WriteString("Your crop diagnosis is complete. Here is your treatment plan.\n\n")

	b.WriteString("DIAGNOSIS\n")
	fmt.Fprintf(&b, "  Crop:      %s\n", input.Crop)
	fmt.Fprintf(&b, "  Disease:   %s\n", disease)
	fmt.Fprintf(&b, "  Severity:  %.1f%%\n", input.Severity)
	fmt.Fprintf(&b, "  Location:  %s\n", input.Location)
	fmt.Fprintf(&b, "  Land size: %.2f acres\n\n", input.Acres)

	if len(input.Pesticides) > 0 {
		b.WriteString("RECOMMENDED PESTICIDES\n")
		for i, p := range input.Pesticides {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, p)
		}
		b.WriteString("\n")
	}

	if len(input.Schedules) > 0 {
		b.WriteString("TREATMENT SCHEDULE\n")
		for _, s := range input.Schedules {
			fmt.Fprintf(&b, "  %s  %s\n", s.ScheduledDate.Format("2006-01-02"), s.PesticideName)
		}
		b.WriteString("\n")
	}

	b.WriteString("Mark each application as completed in the app to track your crop's recovery.\n\n")
	fmt.Fprintf(&b, "Generated on %s by FarmCare.\n", input.GeneratedAt.Format("January 2, 2006"))

	return b.String()
}
