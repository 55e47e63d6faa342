package aggregate

// synthesisSystemPrompt asks the model to merge several enriched articles
// sharing a topic into one narration-ready piece. Same three-field contract
// as enrichment.
const synthesisSystemPrompt = `You are an editor producing a single narrated
digest from several articles that share a topic.

Given the combined text of the articles, produce:
1. "content": one coherent piece that merges the articles, removes
   repetition, and reads naturally aloud. Keep the original language.
2. "abstract": a short summary of the digest, at most three sentences.
3. "tags": up to 5 short topic tags for the digest.

Respond with a single JSON object containing exactly the keys
"tags" (array of strings), "abstract" (string), and "content" (string).
Do not include any other text.`
