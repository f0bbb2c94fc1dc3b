// Package domain defines the core types shared by every doodledash component.
//
// # Components
//
// A dashboard is assembled from four kinds of pluggable components, each
// identified by a Category:
//
// DataFeed produces Messages on demand (static text, clock, JSON file, SQL
// query, network scan, remote command).
//
// Filter is a side-effect free predicate over a Message.
//
// Handler accumulates Messages and draws its state onto a Display.
//
// Display is the output surface (console, recorder).
//
// # Secrets
//
// SecretResolver is an opaque key to value lookup handed to every component
// factory. The core never inspects it.
//
// # Design Principles
//
// - No configuration, storage or transport dependencies
// - Interfaces small enough to fake in tests
package domain
