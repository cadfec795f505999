// Package classify maps free-form task text onto one command tag from the
// closed task vocabulary (/chore, /bug, /feature).
//
// The default RuntimeClassifier delegates to the core.Invoker so the same
// CLI runtime that executes commands also classifies them. The anthropic and
// openai subpackages offer API-backed classifiers for setups that classify
// without spawning the runtime. All implementations share one contract: the
// model's reply is trimmed and accepted only when it is a whitelist member;
// anything else reports no match and leaves the fallback to the caller.
package classify
