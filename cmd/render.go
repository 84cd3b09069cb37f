package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/campus-tools/results-viewer/internal/results"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func styleCells(row, _ int) lipgloss.Style {
	if row == table.HeaderRow {
		return headerStyle
	}
	return cellStyle
}

// renderPayload lays results out the way the results page does: semester
// tables in pairs, then the overall GPA line.
func renderPayload(p *results.Payload) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Registration Number : "+p.RegNo) + "\n")
	b.WriteString(titleStyle.Render("Name : "+p.Name) + "\n\n")

	for i := 0; i < len(p.SemesterResults); i += 2 {
		end := min(i+2, len(p.SemesterResults))
		blocks := make([]string, 0, 2)
		for _, sem := range p.SemesterResults[i:end] {
			blocks = append(blocks, renderSemester(sem))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, blocks...))
		b.WriteString("\n\n")
	}

	b.WriteString(titleStyle.Render("Overall GPA: "+p.OverallGPA) + "\n")
	if p.AuthoritativeOverallGPA != nil && *p.AuthoritativeOverallGPA != p.OverallGPA {
		b.WriteString("OCGPA: " + *p.AuthoritativeOverallGPA + "\n")
	}
	if p.ComputedOverallGPA != p.OverallGPA {
		b.WriteString("Computed GPA: " + p.ComputedOverallGPA + "\n")
	}
	return b.String()
}

func renderSemester(sem results.Semester) string {
	parts := []string{titleStyle.Render("Results for " + sem.Name)}
	for _, course := range sem.Courses {
		rows := make([][]string, 0, len(course))
		for _, g := range course {
			rows = append(rows, []string{g.Subject, g.Grade})
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			StyleFunc(styleCells).
			Headers("Course", "Grade").
			Rows(rows...)
		parts = append(parts, t.Render())
	}
	parts = append(parts, "Semester GPA: "+strconv.FormatFloat(sem.SemesterGPA, 'f', -1, 64))
	return lipgloss.NewStyle().MarginRight(4).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
