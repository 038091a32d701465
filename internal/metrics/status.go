// Package metrics exposes prometheus collectors for the scanner components.
package metrics

const namespace = "opreturn"

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
