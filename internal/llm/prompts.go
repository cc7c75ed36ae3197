package llm

// prompts.go keeps the prompt templates in one place so they can be tuned
// without touching the client logic.

const severityPrompt = `Analyze these health symptoms and provide a severity score from 0 (perfect health) to 100 (critical condition):
%s

Return ONLY a single integer number, nothing else.`

const triagePrompt = `As a medical triage assistant, analyze these symptoms and provide recommendations:
%s

Respond with a JSON object containing ONLY these fields:
- "triage_level": "self-monitor", "visit-doctor", "urgent-care" or "emergency"
- "confidence": "Low", "Medium", or "High"
- "reasoning": Brief explanation (1-2 sentences)
- "recommended_action": Concise next steps (1-2 sentences)
- "detailed_analysis": More detailed medical analysis (2-3 sentences)

Return ONLY valid JSON, no other text. Respond in the language "%s" (the language of the user's symptoms).
Keep responses concise and to the point.`

const chatSystemPrompt = `You are a warm and approachable health assistant.
Respond in the language "%s" (the language of the user's message). Keep responses concise (1-2 sentences max).
Do not give definitive diagnoses or prescribe treatment.`

const reportPrompt = `Create a brief medical report in the same language as the symptoms data.

PATIENT:
%s

RECENT SYMPTOMS (last %d):
%s

RECENT TRIAGE (last %d):
%s

Generate a very concise report with:
1. Summary (1 line)
2. Trends (1 line)
3. Patterns (1 line)
4. Risk (1 line)
5. Recommendations (1 line)

Keep it extremely brief and professional.`

const languagePrompt = `Detect language of this text. Return ONLY the two-letter language code (en, es, fr, etc.):
%s

Language code:`
