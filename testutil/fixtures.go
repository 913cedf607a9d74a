package testutil

// Canned bodies returned by fake advisory backends
const (
	// AnswerBody is a complete reply with two citations
	AnswerBody = `{
  "answer": "Yes. Buildings with a connected load of 100 kVA or more are covered.",
  "applies": "yes",
  "reason": "Connected load 150 kVA exceeds the threshold",
  "sources": [
    {"chunk_id": "p4_c1", "page": 4, "score": 0.873, "excerpt": "This Code applies to buildings with a connected load of 100 kVA and above."},
    {"chunk_id": "p27_c2", "page": 27, "score": 0.641, "excerpt": "Window to wall ratio shall not exceed 40 percent."}
  ]
}`

	// AnswerWithoutSourcesBody omits the sources field
	AnswerWithoutSourcesBody = `{"answer": "Partly covered.", "applies": "partial", "reason": "Only the extension qualifies"}`

	// WrongTypesBody has every field present with the wrong type
	WrongTypesBody = `{"answer": 42, "applies": ["yes"], "reason": null, "sources": "none"}`

	// EmptyObjectBody is a success reply with nothing in it
	EmptyObjectBody = `{}`

	// NotJSONBody is what a misrouted proxy tends to return
	NotJSONBody = `<html><body>Bad Gateway</body></html>`

	// HealthyBody is the health endpoint reply
	HealthyBody = `{"ok": true}`
)
