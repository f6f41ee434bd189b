package llm

import "fmt"

// Prompt templates for chat analysis. The combined prompt covers the
// single-chunk path with one call; the per-chunk and merge prompts cover
// conversations that had to be split.

const analyzeAllTemplate = `Analyze this group chat. Respond ONLY in the exact format below, no extra text.

CHAT:
%s

Respond in this EXACT format:

SUMMARY:
(3-5 sentence summary of the conversation)

TOPICS:
- (topic 1)
- (topic 2)
- (add more as needed)

ACTION ITEMS:
- (Person: action item 1)
- (Person: action item 2)
- (add more as needed)

PARTICIPANTS:
%s`

const summarizeTemplate = `You are analyzing a group chat conversation. Provide a concise summary of the conversation covering the main discussion points and outcomes.

CHAT:
%s

Provide a clear summary in 3-5 sentences. Focus on what was discussed, decided, and any important information shared.`

const extractTopicsTemplate = `You are analyzing a group chat conversation. Extract the key topics discussed.

CHAT:
%s

List each distinct topic on its own line, prefixed with "- ". Only list topics, no other text. Example:
- Project timeline discussion
- Backend API setup`

const extractActionItemsTemplate = `You are analyzing a group chat conversation. Extract any action items, tasks, or commitments made by participants.

CHAT:
%s

List each action item on its own line, prefixed with "- ". Include who is responsible if mentioned. Only list action items, no other text. Example:
- Bob: Set up the GitHub repository
- Alice: Review the PR by Friday`

const mergeSummariesTemplate = `You are combining multiple summaries of different parts of a long group chat conversation into one cohesive summary.

PARTIAL SUMMARIES:
%s

Combine these into a single coherent summary in 3-5 sentences. Remove redundancy and focus on the overall narrative.`

const mergeTopicsTemplate = `You are combining topic lists extracted from different parts of a conversation. Deduplicate and consolidate them.

TOPIC LISTS:
%s

Output a single consolidated list of unique topics, one per line prefixed with "- ". Remove duplicates and merge similar topics.`

const mergeActionItemsTemplate = `You are combining action item lists from different parts of a conversation. Deduplicate and consolidate them.

ACTION ITEM LISTS:
%s

Output a single consolidated list of unique action items, one per line prefixed with "- ". Remove duplicates.`

// AnalyzeAllPrompt fills the combined single-call prompt.
func AnalyzeAllPrompt(chatText, participantList string) string {
	return fmt.Sprintf(analyzeAllTemplate, chatText, participantList)
}

// ParticipantLine formats one participant entry of the combined prompt.
func ParticipantLine(name string) string {
	return fmt.Sprintf("- %s: (1-2 sentence summary of their contributions)", name)
}

// SummarizePrompt fills the per-chunk summary prompt.
func SummarizePrompt(chatText string) string {
	return fmt.Sprintf(summarizeTemplate, chatText)
}

// ExtractTopicsPrompt fills the per-chunk topic extraction prompt.
func ExtractTopicsPrompt(chatText string) string {
	return fmt.Sprintf(extractTopicsTemplate, chatText)
}

// ExtractActionItemsPrompt fills the per-chunk action item prompt.
func ExtractActionItemsPrompt(chatText string) string {
	return fmt.Sprintf(extractActionItemsTemplate, chatText)
}

// MergeSummariesPrompt fills the summary merge prompt.
func MergeSummariesPrompt(summaries string) string {
	return fmt.Sprintf(mergeSummariesTemplate, summaries)
}

// MergeTopicsPrompt fills the topic merge prompt.
func MergeTopicsPrompt(topics string) string {
	return fmt.Sprintf(mergeTopicsTemplate, topics)
}

// MergeActionItemsPrompt fills the action item merge prompt.
func MergeActionItemsPrompt(actionItems string) string {
	return fmt.Sprintf(mergeActionItemsTemplate, actionItems)
}
