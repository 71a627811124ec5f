package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/muesli/termenv"

	"github.com/offlinekit/jobsync/internal/models"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

type WriteOptions struct {
	ColorEnabled bool
}

func WriteJobs(w io.Writer, jobs []models.JobRecord, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, jobs)
	case FormatCSV:
		return writeCSV(w, jobs, ',')
	case FormatTSV:
		return writeCSV(w, jobs, '\t')
	case FormatMarkdown:
		return writeMarkdown(w, jobs)
	default:
		return writeTable(w, jobs, opts)
	}
}

// WriteJobDetail renders a single record in long form.
func WriteJobDetail(w io.Writer, job models.JobRecord, format Format) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(job)
	}

	lines := []string{
		fmt.Sprintf("%s - %s", safe(job.Title), safe(job.Company)),
		fmt.Sprintf("ID:       %s", job.ID),
		fmt.Sprintf("Location: %s", safe(job.Location)),
	}
	if job.EmploymentType != "" {
		lines = append(lines, fmt.Sprintf("Type:     %s", safe(job.EmploymentType)))
	}
	if job.Category != "" {
		lines = append(lines, fmt.Sprintf("Category: %s", safe(job.Category)))
	}
	if salary := models.FormatSalary(job.Salary); salary != "" {
		lines = append(lines, fmt.Sprintf("Salary:   %s", salary))
	}
	if posted := postedText(job); posted != "" {
		lines = append(lines, fmt.Sprintf("Posted:   %s", posted))
	}
	if job.Featured {
		lines = append(lines, "Featured: yes")
	}
	if job.Description != "" {
		lines = append(lines, "", safe(job.Description))
	}
	if len(job.Requirements) > 0 {
		lines = append(lines, "", "Requirements:")
		for _, item := range job.Requirements {
			lines = append(lines, "  - "+safe(item))
		}
	}
	if len(job.Benefits) > 0 {
		lines = append(lines, "", "Benefits:")
		for _, item := range job.Benefits {
			lines = append(lines, "  - "+safe(item))
		}
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, jobs []models.JobRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jobs)
}

func writeCSV(w io.Writer, jobs []models.JobRecord, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(csvHeader()); err != nil {
		return err
	}
	for _, job := range jobs {
		if err := writer.Write(csvRow(job)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeTable(w io.Writer, jobs []models.JobRecord, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeader(), "\t"))
	output := termenv.NewOutput(w)
	for _, job := range jobs {
		fmt.Fprintln(tw, strings.Join(tableRow(job, output, opts), "\t"))
	}
	return tw.Flush()
}

func writeMarkdown(w io.Writer, jobs []models.JobRecord) error {
	if len(jobs) == 0 {
		_, err := fmt.Fprintln(w, "No jobs cached.")
		return err
	}
	for _, job := range jobs {
		lines := []string{
			fmt.Sprintf("- **%s** (%s)", safe(job.Title), safe(job.Company)),
			fmt.Sprintf("  ID: %s", job.ID),
			fmt.Sprintf("  Location: %s", safe(job.Location)),
		}
		if job.EmploymentType != "" {
			lines = append(lines, fmt.Sprintf("  Type: %s", safe(job.EmploymentType)))
		}
		if salary := models.FormatSalary(job.Salary); salary != "" {
			lines = append(lines, fmt.Sprintf("  Salary: %s", salary))
		}
		if posted := postedText(job); posted != "" {
			lines = append(lines, fmt.Sprintf("  Posted: %s", posted))
		}
		if job.Featured {
			lines = append(lines, "  Featured: yes")
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func csvHeader() []string {
	return []string{
		"id",
		"title",
		"company",
		"location",
		"employment_type",
		"category",
		"featured",
		"salary",
		"posted_at",
		"detailed",
	}
}

func csvRow(job models.JobRecord) []string {
	return []string{
		job.ID,
		job.Title,
		job.Company,
		job.Location,
		job.EmploymentType,
		job.Category,
		boolString(job.Featured),
		job.Salary,
		postedText(job),
		boolString(job.Detailed()),
	}
}

func tableHeader() []string {
	return []string{
		"id",
		"title",
		"company",
		"location",
		"posted",
		"",
	}
}

func tableRow(job models.JobRecord, output *termenv.Output, opts WriteOptions) []string {
	marker := ""
	if job.Featured {
		marker = "featured"
		if opts.ColorEnabled {
			marker = output.String(marker).Foreground(output.Color("3")).String()
		}
	}
	return []string{
		safe(job.ID),
		safe(job.Title),
		safe(job.Company),
		safe(job.Location),
		postedText(job),
		marker,
	}
}

func postedText(job models.JobRecord) string {
	if !job.PostedAt.IsZero() {
		return job.PostedAt.Format(time.DateOnly)
	}
	return safe(job.PostedAtRaw)
}

func boolString(value bool) string {
	if value {
		return "true"
	}
	return "false"
}

func safe(value string) string {
	return strings.TrimSpace(value)
}
