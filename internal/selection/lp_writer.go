package selection

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const maxLPLine = 200

// WriteLP writes the model in CPLEX LP format.
func (m *Model) WriteLP(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, `\* candidate route set partitioning *\`)
	fmt.Fprintln(bw, "Minimize")

	terms := make([]string, len(m.columns))
	for i, c := range m.columns {
		terms[i] = strconv.FormatFloat(c.Cost, 'g', -1, 64) + " " + VariableName(i)
	}
	writeRow(bw, "OBJ", terms, "")

	fmt.Fprintln(bw, "Subject To")
	for s, cols := range m.covering {
		terms := make([]string, len(cols))
		for i, c := range cols {
			terms[i] = VariableName(c)
		}
		writeRow(bw, constraintName(s, m.stops[s]), terms, " = 1")
	}

	own := make([]string, 0, len(m.columns)/2)
	for i, c := range m.columns {
		if !c.Hired {
			own = append(own, VariableName(i))
		}
	}
	if len(own) > 0 {
		writeRow(bw, "fleet", own, " <= "+strconv.Itoa(m.fleetSize))
	}

	fmt.Fprintln(bw, "Binaries")
	for i := range m.columns {
		fmt.Fprintln(bw, VariableName(i))
	}
	fmt.Fprintln(bw, "End")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write lp: %w", err)
	}
	return nil
}

// writeRow writes "name: t1 + t2 ... suffix", wrapping long expressions.
func writeRow(w *bufio.Writer, name string, terms []string, suffix string) {
	line := name + ":"
	for i, t := range terms {
		sep := " "
		if i > 0 {
			sep = " + "
		}
		if len(line)+len(sep)+len(t) > maxLPLine {
			fmt.Fprintln(w, line)
			line = ""
			if i > 0 {
				sep = "+ "
			}
		}
		line += sep + t
	}
	if len(terms) == 0 {
		line += " 0"
	}
	fmt.Fprintln(w, line+suffix)
}

// constraintName builds a unique LP-safe row name for stop s.
func constraintName(s int, stop string) string {
	var b strings.Builder
	for _, r := range stop {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return "cover_" + strconv.Itoa(s) + "_" + b.String()
}
