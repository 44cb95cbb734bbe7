// Package mongodb implements the document task store backed by MongoDB,
// accessed through the official mongo-driver.
package mongodb
