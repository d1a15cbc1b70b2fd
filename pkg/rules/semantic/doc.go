// Package semantic resolves fuzzy cross-document comparisons ahead of
// deterministic rule evaluation.
//
// Letter-of-credit fields rarely match byte for byte: "Mundra Port,
// India" on the bill of lading must satisfy "MUNDRA SEAPORT" on the
// credit. A semantic_check condition asks whether two such values mean
// the same thing. The Injector answers every semantic condition up
// front, using a Comparator (AI-backed when configured, deterministic
// fuzzy matching otherwise), and rewrites the condition into a plain
// equality check against the recorded verdict. The evaluator that runs
// afterwards stays fully deterministic.
//
// Comparator failures never fail validation: the AI comparator degrades
// to the fuzzy fallback, and an unresolvable left-hand field simply
// leaves the condition unanswered so the evaluator reports it as not
// applicable.
package semantic
