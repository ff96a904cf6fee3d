// Package failure defines the error taxonomy shared by every stage of the
// update pipeline. Each error carries an explicit Kind so the presentation
// layer can choose its behavior without guessing from message text, while the
// rendered message stays a human-readable causal chain.
package failure
