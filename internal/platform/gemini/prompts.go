package gemini

// Prompt templates for exam generation and evaluation. They instruct the
// model to answer with a single JSON object; parseDocument still tolerates
// responses that ignore that instruction.
const (
	generatePromptTemplate = `You are an examiner creating a German language exam following the Goethe-Institut format.

Create a complete {{.Skill}} exam for CEFR level {{.Level}}.

Requirements:
- All exam content must match the difficulty and vocabulary range of level {{.Level}}.
- Include the exam tasks, all texts or transcripts the participant needs, the questions, the answer options, and the correct answers.
- Respond with a single JSON object and nothing else. Do not wrap it in markdown fences.

The JSON object must have this shape:
{
  "level": "{{.Level}}",
  "title": "...",
  "tasks": [
    {
      "instructions": "...",
      "text": "...",
      "questions": [
        {"number": 1, "question": "...", "options": ["...", "..."], "answer": "..."}
      ]
    }
  ]
}`

	evaluatePromptTemplate = `You are an examiner grading a German writing exam following the Goethe-Institut format.

The exam that was given to the participant:
{{.Payload}}

The participant's submitted answers:
{{.Answers}}

Grade the submission. Judge task completion, coherence, vocabulary and grammar appropriate to the exam's CEFR level.

Respond with a single JSON object and nothing else. Do not wrap it in markdown fences. The object must have this shape:
{
  "score": <integer from 0 to 100>,
  "summary": "...",
  "criteria": [
    {"name": "...", "score": <integer>, "comments": "..."}
  ]
}`
)

// skillName maps a generation category to the exam skill named in prompts.
var skillNames = map[string]string{
	"read":             "reading comprehension",
	"write_generation": "writing",
	"listen":           "listening comprehension",
}
