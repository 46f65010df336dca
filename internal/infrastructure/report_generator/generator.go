// Package report_generator renders a review-sheet PDF for a completed job:
// the target form, every mapped value and its source, and the agent's fill
// summary, so the operator can check the filled form against the documents
// before submitting it.
package report_generator

import (
	"fmt"

	"formfill-agent/internal/domain"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type Generator struct{}

func New() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(outputPath string, job domain.Job) error {
	if job.Result == nil {
		return fmt.Errorf("job %s has no result", job.ID)
	}

	m := maroto.New(config.NewBuilder().Build())

	m.AddRow(12, text.NewCol(12, "Form fill review sheet", props.Text{
		Size:  16,
		Style: fontstyle.Bold,
	}))
	m.AddRow(7, text.NewCol(12, "Job: "+job.ID))
	m.AddRow(7, text.NewCol(12, "Form URL: "+job.FormURL))
	m.AddRow(10, text.NewCol(12, ""))

	m.AddRow(8, text.NewCol(12, "Filled values", props.Text{
		Size:  12,
		Style: fontstyle.Bold,
	}))
	m.AddRow(6,
		text.NewCol(4, "Field", props.Text{Style: fontstyle.Bold}),
		text.NewCol(6, "Value", props.Text{Style: fontstyle.Bold}),
		text.NewCol(2, "Source", props.Text{Style: fontstyle.Bold}),
	)
	for _, value := range job.Result.ExtractedValues {
		m.AddRow(6,
			text.NewCol(4, value.Name),
			text.NewCol(6, value.Value),
			text.NewCol(2, value.Source),
		)
	}

	if job.Result.FillSummary != "" {
		m.AddRow(10, text.NewCol(12, ""))
		m.AddRow(8, text.NewCol(12, "Agent summary", props.Text{
			Size:  12,
			Style: fontstyle.Bold,
		}))
		m.AddRow(6, text.NewCol(12, job.Result.FillSummary))
	}

	document, err := m.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate review sheet: %w", err)
	}

	if err := document.Save(outputPath); err != nil {
		return fmt.Errorf("failed to save review sheet: %w", err)
	}

	return nil
}
