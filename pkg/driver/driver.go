// Package driver implements the §6 command-line driver's phase orchestration:
// it chains the binder passes in pkg/bind and pkg/lower end to end, logging
// a structured entry at every phase boundary and raising once per boundary
// if that phase logged any errors (§7 "the driver throws once per phase
// boundary if any errors were logged").
package driver

import (
	"github.com/google/turbine/pkg/bind"
	"github.com/google/turbine/pkg/bound"
	"github.com/google/turbine/pkg/classfile"
	"github.com/google/turbine/pkg/diag"
	"github.com/google/turbine/pkg/env"
	"github.com/google/turbine/pkg/lower"
	"github.com/google/turbine/pkg/sym"
	"github.com/google/turbine/pkg/tree"
	"github.com/sirupsen/logrus"
)

// Classpath is the fallback env.Env HierarchyBinder resolves classpath
// supertypes through (pkg/classpath.Env satisfies this).
type Classpath = env.Env[sym.ClassSymbol, *bound.SourceHeaderBoundClass]

// Result is everything a successful Bind run produces: the lowered class
// files, keyed by binary name, plus the fully bound intermediate classes
// deps.go's classification reads to tell an EXPLICIT classpath reference
// from an UNUSED one.
type Result struct {
	ClassFiles map[sym.ClassSymbol]*classfile.ClassFile
	Headers    map[sym.ClassSymbol]*bound.SourceHeaderBoundClass
	Bound      map[sym.ClassSymbol]*bound.SourceTypeBoundClass
}

// Bind runs every binder phase over units in order, logging a structured
// entry (phase name and, where known, class count) at each boundary and
// stopping with the first *diag.PhaseError a phase raises. entry is never
// nil; callers that don't want logging pass logrus.NewEntry(logrus.New())
// with the logger's output discarded. log accumulates every diagnostic from
// every phase, including any the classpath fallback Env logs while serving
// a classpath entry (§5's diagnostic ordering contract requires the one
// shared Log a caller built classpath with, not a second one of Bind's own).
func Bind(units []*tree.CompilationUnit, classpath Classpath, log *diag.Log, entry *logrus.Entry) (*Result, error) {
	topLevel, srcClasses, roots := bind.Preprocess(units, log)
	entry.WithField("phase", "preprocess").WithField("classes", len(srcClasses)).Debug("bound top-level declarations")

	if err := log.MaybeThrow("preprocess"); err != nil {
		return nil, err
	}

	psb := bind.BuildScopes(units, srcClasses, roots, topLevel, log)
	entry.WithField("phase", "scopes").WithField("classes", len(psb)).Debug("built import/package scopes")

	if err := log.MaybeThrow("scopes"); err != nil {
		return nil, err
	}

	hb := bind.NewHierarchyBinder(psb, classpath, log)
	headers := hb.Bind()
	entry.WithField("phase", "hierarchy").WithField("classes", len(headers)).Debug("bound class hierarchy")

	if err := log.MaybeThrow("hierarchy"); err != nil {
		return nil, err
	}

	cbd := bind.NewClassBinder(headers, log)
	stb := cbd.BindAll()
	entry.WithField("phase", "members").WithField("classes", len(stb)).Debug("bound fields and methods")

	if err := log.MaybeThrow("members"); err != nil {
		return nil, err
	}

	types := bind.NewTypeBinder(headers)
	cnst := bind.NewConstBinder(stb, types, log)
	cnst.BindAll()
	entry.WithField("phase", "constants").Debug("folded constant expressions")

	if err := log.MaybeThrow("constants"); err != nil {
		return nil, err
	}

	bind.CanonicalizeAll(headers, stb)
	bind.DisambiguateAll(stb, log)
	entry.WithField("phase", "canonicalize").Debug("canonicalized qualifiers and annotations")

	if err := log.MaybeThrow("canonicalize"); err != nil {
		return nil, err
	}

	lowerer := lower.NewLowerer(headers, stb)
	classFiles := lowerer.LowerAll()
	entry.WithField("phase", "lower").WithField("classes", len(classFiles)).Debug("lowered to class files")

	if err := log.MaybeThrow("lower"); err != nil {
		return nil, err
	}

	return &Result{ClassFiles: classFiles, Headers: headers, Bound: stb}, nil
}
