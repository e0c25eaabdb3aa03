// Package prediction evaluates a committee of independently trained price
// estimators on one feature vector and reduces their votes to a mean and a
// spread. How the committee is stored (a forest artifact, a remote service,
// fixed test votes) is hidden behind the Ensemble interface.
package prediction
