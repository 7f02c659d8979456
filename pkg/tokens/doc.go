/*
Package tokens provides a deterministic token estimator and the per-model
context budgets used to pick a processing strategy.

The estimator is a pure function: identical input always yields an identical
count, with no network calls. Counts are approximations of a byte-pair
tokenizer, good enough to decide whether a payload fits a model's context
window with the required 90% safety margin.
*/
package tokens
