package evaluator

import "fmt"

const questionSystemPrompt = "You are expert in generating interview questions tailored to specific roles and industries, experience levels and topics. Your responses should be professional concise and well-structured."

const scoreSystemPrompt = "You are expert in evaluate interview answers with strong understanding of assessing answers to interview questions based on relevance, clarity, and completeness. Your responses should be professional concise and well-structured."

// buildQuestionPrompt собирает промпт генерации вопросов.
// Формат ответа (по вопросу на строку, без нумерации) критичен:
// на нем держится разбор ответа по строкам.
func buildQuestionPrompt(spec QuestionSpec) string {
	return fmt.Sprintf(`Generate total "%d" "%s" "%s" questions for a %s role in the "%s" industry on the topic of "%s".
The interview is applied for a candidate applying for the role of "%s" and total duration of the test should be %d minutes.

**Ensure the following:**
- The questions are well-balanced, including both open-ended and specific questions.
- Each question is designed to evaluate a specific skill or knowledge area relevant to the role.
- The questions should vary in "%s" interview in the "%s" industry, with a mix of easy, medium, and hard questions.
- The questions are clear, concise, and engaging for the candidate.
- Ensure the questions are directly aligned with the specified topic "%s", "%s" responsibilities and expertise in "%s".
- Avoid using yes/no questions; instead, focus on questions that require detailed responses.

**Instructions:**
- Always follow same format questions.
- Provide all question without any prefix.
- No question number or bullet points or hyphens - is required.
- Each question should be separated by a newline.
`,
		spec.NumQuestions, spec.Difficulty, spec.Type, spec.Role, spec.Industry, spec.Topic,
		spec.Role, spec.Duration,
		spec.Difficulty, spec.Industry,
		spec.Topic, spec.Difficulty, spec.Role,
	)
}

// buildScorePrompt собирает промпт оценивания одного ответа
func buildScorePrompt(questionText, answerText string) string {
	return fmt.Sprintf(`
Evaluate the following answer to the question based on the evaluation criteria and provide the scores for relevance, clarity, and completeness, followed by suggestions in text format.

**Evaluation Criteria:**
  1. Overall Score: Provide an overall score out of 10 based on the quality of the answer.
  2. Relevance: Provide a score out of 10 based on how well or how relevant the answer addresses the question.
  3. Clarity: Provide a score out of 10 based on how clear, easy to understand and well-structured the answer is.
  4. Completeness: Provide a score out of 10 based on how comprehensive and detailed the answer covers all aspects of the question.
  5. Suggestions: Provide constructive feedback on how the answer can be improved.

**Question:**
  %s

**Answer:**
  %s

**Instructions:**
- Always follow same format for providing scores and suggestions.
- Provide the score only like "Overall Score: X/10, Relevance Score: X/10, Clarity Score: X/10, Completeness Score: X/10, Suggestions: ..." for the following:
  - Overall Score: X/10
  - Relevance Score: X/10
  - Clarity Score: X/10
  - Completeness Score: X/10

- Provide text only for following only like "Suggestions: your-answer-suggestions-here"
  - Suggestions or improved answer in text.
`, questionText, answerText)
}
