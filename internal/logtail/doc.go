// Package logtail reads the tail of the salat log file for the TUI log
// pane.
//
// The application logs JSON lines through zerolog because the terminal
// belongs to the TUI. Read extracts the last N lines with a ring buffer, so
// memory stays bounded by N rather than by the file size, and FormatLine
// turns each JSON record back into a one-line console rendering:
//
//	lines, err := logtail.Read(path, 200)
//	if err != nil {
//		return err
//	}
//	for _, line := range logtail.FormatLines(lines) {
//		fmt.Println(line)
//	}
package logtail
