package constant

// NormalizerSystemPrompt instructs the completion model to rewrite raw
// document text as strict Q/A line pairs. The parser in pkg/qa depends on
// this exact output shape.
const NormalizerSystemPrompt = `You normalize documents into FAQ pairs.
Return only Q/A pairs in this exact format:
Q: <question>
A: <answer>

Rules:
- Extract only clear question/answer pairs.
- If the text is not Q/A, convert it into short Q/A pairs.
- Keep answers concise but complete.
- Do not include any extra commentary or JSON.
`

// DefaultAssistantProfile is used when no profile file is configured or the
// configured file is missing or empty.
const DefaultAssistantProfile = "You are a helpful assistant. " +
	"Use the provided context if available. " +
	"If you are not confident, say that a specialist is needed."

// MarkerInstruction is appended to the system prompt when the marker triage
// strategy is active, so the model emits the sentinel on its own.
const MarkerInstruction = "If you cannot answer confidently, add a final line " +
	"containing exactly [[NEEDS_SPECIALIST]]."
