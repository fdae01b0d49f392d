// internal/assistant/prompt.go
package assistant

import (
	"fmt"
	"strings"

	"policy-assistant/internal/models"
)

// Prompt is a reusable template with {name} placeholders.
type Prompt struct {
	Template string
}

// Format substitutes {name} placeholders with the given variables. Unknown
// placeholders are left intact.
func (p Prompt) Format(vars map[string]interface{}) string {
	out := p.Template
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{"+name+"}", fmt.Sprintf("%v", value))
	}
	return out
}

// PromptLibrary returns the named prompt templates used across the assistant.
func PromptLibrary() map[string]Prompt {
	return map[string]Prompt{
		"default": {Template: `You are an insurance policy assistant. Answer the following question accurately and helpfully.

Question: {question}

Use only the information from the provided context to answer:
{context}

Do not include citations or references to specific documents in your response as the source information will be displayed separately.`},

		"policy_query": {Template: `You are an insurance policy assistant. Your task is to answer questions about insurance policies based on the provided context.

Answer the following question about {policy_type} insurance:

Question: {question}

Use only the information from these policy documents:
{context}

If the information needed to answer is not available in the context, state that you don't have enough information to provide an accurate answer rather than making up information.

Do not include citations or references to specific documents in your response as the source information will be displayed separately.`},

		"intent_detected": {Template: `You are an insurance policy assistant. I've detected that the user is interested in {intent}.

Question: {question}

Based on this intent and the following policy information:
{context}

Provide a helpful response that addresses their specific intent. If they appear to be interested in purchasing a policy or learning about specific coverage, highlight the most relevant details.

If the information needed to answer is not available in the context, state that you don't have enough information to provide an accurate answer rather than making up information.

Do not include citations or references to specific documents in your response as the source information will be displayed separately.`},

		"insufficient_info": {Template: `You are an insurance policy assistant. The user has asked:

Question: {question}

I don't have enough specific information in the policy documents to provide a complete answer to this question. Based on the limited information I have:
{context}

Provide a helpful response that:
1. Acknowledges the limitations of the available information
2. Provides any partial information that might be helpful
3. Suggests what additional information might be needed
4. Offers alternative ways the user might get the information they need (e.g., calling customer service - 1800 2666)

Do not include citations or references to specific documents in your response as the source information will be displayed separately.`},

		"comparison": {Template: `You are an insurance policy assistant. The user wants to compare different policies.

Question: {question}

Based on these policy documents:
{context}

Create a helpful comparison that highlights:
1. Key differences between the policies
2. Unique benefits of each policy
3. Coverage limitations for each policy
4. Price considerations if available

Present this information in a clear, structured way that helps the user make an informed decision.

Do not include citations or references to specific documents in your response as the source information will be displayed separately.`},
	}
}

// baseSystemInstruction states the assistant's role and grounding rules for
// the session-aware pipeline.
const baseSystemInstruction = `You are an insurance policy assistant. Your task is to answer questions about insurance policies based on the provided context.

IMPORTANT: When user policy information is available in the context (marked as "User Policy"), prioritize using that information to answer questions about the user's specific policy. The context will include detailed information about policy details, coverages, and personal information.

Use only the information from the policy documents and user policy data when answering. If the information needed to answer is not available in the context,
state that you don't have enough information to provide an accurate answer rather than making up information.

Do not include citations or references to specific documents in your response as the source information will be displayed separately.`

// BuildSystemInstruction appends intent hints to the base instruction. The
// primary intent becomes a soft hint; any further intents become alternates.
func BuildSystemInstruction(detected models.DetectedIntent) string {
	instruction := baseSystemInstruction

	if len(detected) == 0 {
		return instruction
	}

	if primary := detected[0].Intent; primary != nil && *primary != "" {
		instruction += fmt.Sprintf("\n\nI detected that the user's primary intent may be: %s. Consider this when providing your response.", *primary)
	}

	var secondary []string
	for _, pred := range detected[1:] {
		if pred.Intent != nil && *pred.Intent != "" {
			secondary = append(secondary, *pred.Intent)
		}
	}
	if len(secondary) > 0 {
		instruction += fmt.Sprintf("\n\nAlternative intents to consider: %s.", strings.Join(secondary, ", "))
	}

	return instruction
}
