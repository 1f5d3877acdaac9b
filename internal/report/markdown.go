package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/clearseek/clearseek/internal/graph"
	"github.com/clearseek/clearseek/internal/model"
	"github.com/clearseek/clearseek/internal/retrieve"
)

// Data is everything the report renders.
type Data struct {
	// SessionID identifies the research session.
	SessionID string

	// Seed is the session's seed URL.
	Seed string

	// Mode is the research mode the session ran with.
	Mode string

	// Summary holds the terminal state and counters.
	Summary *model.Summary

	// Hubs are the most-linked pages, best first.
	Hubs []graph.Hub

	// Question, when non-empty, adds a findings section with the
	// retrieved passages.
	Question string

	// Passages are the retrieval results for Question.
	Passages []retrieve.Result
}

// MarkdownWriter renders session reports as Markdown.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation which provides:
//  1. Type-safe markdown generation
//  2. Support for tables, lists, and code blocks
//  3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Write renders the full report.
func (w *MarkdownWriter) Write(data *Data) error {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, data)
	w.writeSummary(md, data.Summary)
	w.writeHubs(md, data.Hubs)
	w.writeFindings(md, data)

	return md.Build()
}

// writeHeader writes the report title and session information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, data *Data) {
	md.H1("Research Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed", "`" + data.Seed + "`"},
			{"Mode", data.Mode},
			{"Session", data.SessionID},
			{"State", w.stateText(data.Summary)},
			{"Duration", data.Summary.Duration.Round(time.Millisecond).String()},
		},
	})
	md.PlainText("")
}

// stateText explains the terminal state for readers who do not know
// the state machine.
func (w *MarkdownWriter) stateText(summary *model.Summary) string {
	switch summary.State {
	case model.StateCompleted:
		return "completed (frontier drained)"
	case model.StateExhausted:
		return "exhausted (budget ran out, partial results)"
	case model.StateAborted:
		return "aborted (cancelled, partial results)"
	default:
		return string(summary.State)
	}
}

// writeSummary writes the crawl counters.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Crawl Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Pages fetched", strconv.Itoa(summary.PagesFetched)},
			{"Pages blocked", strconv.Itoa(summary.PagesBlocked)},
			{"Pages errored", strconv.Itoa(summary.PagesErrored)},
			{"Pages skipped", strconv.Itoa(summary.PagesSkipped)},
			{"Links discovered", strconv.Itoa(summary.LinksDiscovered)},
			{"Chunks indexed", strconv.Itoa(summary.ChunksIndexed)},
			{"**Total pages**", "**" + strconv.Itoa(summary.TotalPages()) + "**"},
		},
	})
	md.PlainText("")
}

// writeHubs writes the most-linked pages.
func (w *MarkdownWriter) writeHubs(md *markdown.Markdown, hubs []graph.Hub) {
	if len(hubs) == 0 {
		return
	}

	md.H2("Most Linked Pages")
	md.PlainText("")

	rows := make([][]string, 0, len(hubs))
	for _, hub := range hubs {
		rows = append(rows, []string{hub.URL, strconv.Itoa(hub.InDegree)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Inbound Links"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFindings writes the retrieved passages with source attribution.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, data *Data) {
	if data.Question == "" {
		return
	}

	md.H2("Findings")
	md.PlainText("")
	md.PlainTextf("Question: %s", data.Question)
	md.PlainText("")

	if len(data.Passages) == 0 {
		md.PlainText("No relevant passages were found in the knowledge base.")
		md.PlainText("")
		return
	}

	for i, passage := range data.Passages {
		md.H3(fmt.Sprintf("Passage %d (score %.3f)", i+1, passage.Score))
		md.PlainText("")
		md.Blockquote(passage.Chunk.Text)
		md.PlainText("")
		md.PlainTextf("[Source: %s]", passage.Chunk.DocumentURL)
		md.PlainText("")
	}
}
