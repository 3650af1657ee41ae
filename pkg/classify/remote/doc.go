// Package remote provides [classify.External] implementations that consult a
// classifier outside the process.
//
//   - [HTTPClassifier] posts the node summary as JSON to an endpoint.
//   - [GeminiClassifier] asks a Gemini model through google.golang.org/genai.
//   - [Cached] memoises any of them in an LRU and, optionally, a shared
//     [cache.Cache].
//
// All of them parse the answer with [ParseAnswer]: either a JSON object
// {"role": ..., "confidence": ...} or a bare role label. Anything else is an
// error, which the classifier treats as no answer.
package remote
