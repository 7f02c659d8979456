package tokens

import "strings"

// Strategy names the two supported processing strategies for a payload.
type Strategy string

const (
	// StrategyStuff submits the whole payload in a single completion pass.
	StrategyStuff Strategy = "stuff"

	// StrategyMapReduce chunks the payload and summarizes in multiple steps.
	StrategyMapReduce Strategy = "map_reduce"
)

// budgetThreshold is the fraction of a model's context window a payload may
// occupy before the chunked strategy is selected.
const budgetThreshold = 0.9

// DefaultBudget is assumed for models missing from the table.
const DefaultBudget = 4096

// modelBudgets maps model families to their context windows. Ordered so that
// longer names match before their prefixes (gpt-4-32k before gpt-4).
var modelBudgets = []struct {
	name   string
	budget int
}{
	{"gpt-4-32k", 32768},
	{"gpt-4", 8192},
	{"gpt-35-turbo-16k", 16384},
	{"gpt-3.5-turbo-16k", 16384},
	{"gpt-35-turbo", 4096},
	{"gpt-3.5-turbo", 4096},
	{"text-davinci-003", 4097},
	{"text-embedding-ada-002", 8191},
}

// Budget returns the context window for a model identifier.
//
// Azure deployments are commonly named after the underlying model with a
// site-specific prefix or suffix, so the lookup matches by substring.
func Budget(model string) int {
	m := strings.ToLower(model)
	for _, e := range modelBudgets {
		if strings.Contains(m, e.name) {
			return e.budget
		}
	}
	return DefaultBudget
}

// Choose selects the processing strategy for one completion request.
//
// The chunked strategy is selected iff the combined prompt-template, context,
// and requested completion tokens exceed 90% of the budget.
func Choose(budget, promptTokens, contextTokens, completionTokens int) Strategy {
	total := promptTokens + contextTokens + completionTokens
	if float64(total) > budgetThreshold*float64(budget) {
		return StrategyMapReduce
	}
	return StrategyStuff
}

// ChooseForModel is Choose with the budget looked up from the model table.
func ChooseForModel(model string, promptTokens, contextTokens, completionTokens int) Strategy {
	return Choose(Budget(model), promptTokens, contextTokens, completionTokens)
}
