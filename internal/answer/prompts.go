package answer

import "fmt"

// noContext replaces the grounding context when retrieval returns nothing, so
// the model is steered toward its refusal wording instead of free recall.
const noContext = "No relevant documents were found."

const legalSystemPrompt = "You are a legal research chatbot. Based on the provided " +
	"legal documents and your general knowledge, answer the user's question accurately " +
	"and professionally. Cite specific document excerpts where applicable. If the " +
	"provided context is not sufficient, state that you cannot provide a detailed " +
	"answer based on the given documents. Do not hallucinate or create legal information."

func userPrompt(question, context string) string {
	return fmt.Sprintf("Based on the following legal documents, answer this question: %s\n\nDocuments:\n%s",
		question, context)
}

const summarizeSystemPrompt = `You are an expert legal fact extractor.
Your task is to analyze the provided legal documents and extract all facts and key concepts that are directly relevant to the user's question.
Present the extracted information as a bulleted list.
Do not add any opinions, analysis, or information not present in the documents.
If no relevant information is found, state "No relevant facts found."
`

func summarizeUserPrompt(question, context string) string {
	return fmt.Sprintf("Query: %s\n\nDocuments:\n%s", question, context)
}

func finalAnswerSystemPrompt(question, context string) string {
	return fmt.Sprintf(`You are a meticulous legal expert. Your task is to provide a final, high-quality, and complete response to the user's query.

Follow these instructions strictly to achieve high faithfulness:
1.  **Directly address the Original Query.**
2.  **Use ONLY the provided Context.**
3.  **Be concise and accurate.**
4.  If the context contains contradictory or nuanced information, state that the answer is not a simple yes/no and explain the different scenarios described in the context.
5.  If the context does not contain the answer, state "I'm sorry, I cannot answer this question based on the provided documents."

Original Query: %s

Context:
%s
`, question, context)
}

func finalAnswerUserPrompt(question string) string {
	return fmt.Sprintf("Based on the context, provide the final, complete answer to the query: %s", question)
}
