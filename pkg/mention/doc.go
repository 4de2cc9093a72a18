// Package mention finds @name mentions in free text and resolves them
// against the employee directory.
//
// Resolution decides who a mention notification is addressed to. A stray
// "@" that matches nobody (an e-mail address, a typo) is not an error; it
// simply addresses no one.
package mention
