// Package scoring computes placement points and aggregates them into team
// and individual standings.
package scoring

import (
	"github.com/okian/fest/internal/domain/catalog"
	"github.com/okian/fest/internal/domain/model"
)

// Input is everything points depend on.
type Input struct {
	Placing  model.Placing
	Category model.Category
	General  bool
	Grade    model.Grade
}

type scale struct{ first, second, third int }

func (s scale) points(p model.Placing) int {
	switch p {
	case model.PlacingFirst:
		return s.first
	case model.PlacingSecond:
		return s.second
	case model.PlacingThird:
		return s.third
	}
	return 0
}

var (
	generalScale = scale{25, 15, 10}
	// Category C shares the general scale.
	categoryScales = map[model.Category]scale{
		model.CategoryA: {12, 8, 4},
		model.CategoryB: {10, 6, 3},
		model.CategoryC: {25, 15, 10},
	}
	gradePoints = map[model.Grade]int{
		model.GradeAPlus: 7,
		model.GradeA:     5,
		model.GradeB:     3,
		model.GradeC:     1,
	}
)

// ComputePoints returns placing points plus grade points. The general flag
// overrides the category. A placement without a placing earns grade points
// only.
func ComputePoints(in Input) int {
	var placing int
	if in.General {
		placing = generalScale.points(in.Placing)
	} else if s, ok := categoryScales[in.Category]; ok {
		placing = s.points(in.Placing)
	}
	return placing + gradePoints[in.Grade]
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithGeneralLookup replaces the general-event allow-list lookup.
func WithGeneralLookup(fn func(eventName string) bool) Option {
	return func(e *Engine) {
		if fn != nil {
			e.isGeneral = fn
		}
	}
}

// Engine scores stored placements.
type Engine struct {
	isGeneral func(string) bool
}

// NewEngine creates an engine backed by the static event catalog.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{isGeneral: catalog.IsGeneral}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Input derives the scoring input of p.
func (e *Engine) Input(p model.Placement) Input {
	return Input{
		Placing:  p.Placing,
		Category: p.Category,
		General:  e.isGeneral(p.EventName),
		Grade:    p.Grade,
	}
}

// Points computes the points p should carry.
func (e *Engine) Points(p model.Placement) int {
	return ComputePoints(e.Input(p))
}

// Apply returns p with Points recomputed.
func (e *Engine) Apply(p model.Placement) model.Placement {
	p.Points = e.Points(p)
	return p
}
