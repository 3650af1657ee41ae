// Package classify assigns a semantic role to every node of a design
// document.
//
// # Rules
//
// A node is tested against an ordered list of rules and the first rule that
// answers with at least medium confidence wins:
//
//  1. [StructuralRule]: the node kind alone (text is always a label, small
//     vectors are icons, lines are dividers).
//  2. [InteractionRule]: a prototype action makes the node a button.
//  3. [NameRule]: the display name is split into tokens on delimiters and
//     camelCase boundaries, and matched as whole tokens against keyword
//     families in a fixed priority order.
//  4. [HeuristicRule]: weak structural signals such as image fills, scroll
//     overflow and aspect ratio.
//
// When no rule is confident, the best weaker answer is kept, and a node no
// rule matches becomes a generic container with low confidence.
//
// # External Classifier
//
// An optional [External] classifier is consulted for nodes whose local
// result is below the threshold. It receives a [Summary] of the node (never
// pixel data) and its answer replaces the local one only when it reports a
// strictly higher confidence. Every external failure falls back to the local
// result; [Classifier.ClassifyDocument] only fails when its context is
// cancelled. External calls run in parallel with a bounded number of workers.
//
// Transports live in the remote subpackage.
package classify
