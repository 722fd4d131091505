// Package calculator owns the live border-calculator document and advances it
// through a closed set of transitions.
//
// # Transitions
//
// The only way to change a Machine's State is Dispatch with one of the
// Action types defined here: SetField, SetPaperSize, SetAspectRatio,
// BatchUpdate, ResetToDefaults, SetImagePlacement and SetActivePanel.
// Every action is applied to a copy of the document and swapped in only when
// it succeeds, so observers see either the old or the new State, never a
// partially applied one.
//
// # Derived values
//
// After each accepted transition the machine commits "last valid" shadows
// for text fields and the border, then recomputes dimensions, geometry and
// warnings once. The recomputation is memoized on the inputs that influence
// it, so toggling display flags does not re-run the solver.
//
//	m := calculator.New()
//	_ = m.Dispatch(calculator.SetPaperSize{Value: "11x14"})
//	_ = m.Dispatch(calculator.SetField{Field: calculator.FieldMinBorder, Value: 0.75})
//	fmt.Println(m.Geometry().Blades)
//
// A Machine has exactly one writer and is not safe for concurrent use.
// Subscribers receive value snapshots and may hand them to other goroutines.
package calculator
