package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const progressBarWidth = 40

// progressBar renders the in-place console progress line during a run.
// It stays silent when stdout is not a terminal.
type progressBar struct {
	total       int
	width       int
	maxStagnant int
	out         io.Writer
	enabled     bool
	printed     bool
}

func newProgressBar(total, maxStagnant int) *progressBar {
	if total < 1 {
		total = 1
	}
	return &progressBar{
		total:       total,
		width:       progressBarWidth,
		maxStagnant: maxStagnant,
		out:         os.Stdout,
		enabled:     isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}
}

func (b *progressBar) update(generation, bestFitness, stagnant int) {
	if !b.enabled {
		return
	}

	percent := generation * 100 / b.total
	filled := generation * b.width / b.total
	bar := ""
	for i := 0; i < b.width; i++ {
		if i < filled {
			bar += "#"
		} else {
			bar += "-"
		}
	}

	stagnation := ""
	if b.maxStagnant > 0 {
		stagnation = fmt.Sprintf(" | stagnation: %d/%d", stagnant, b.maxStagnant)
	}

	fmt.Fprintf(b.out, "\rGA progress: [%s] %3d%% generation %d/%d | best fitness: %d%s",
		bar, percent, generation, b.total, bestFitness, stagnation)
	b.printed = true
}

func (b *progressBar) finish() {
	if b.printed && b.enabled {
		fmt.Fprintln(b.out)
	}
	b.printed = false
}
