// Package urls holds documentation links printed by the command line tools
// and the dashboard.
//
// Example:
//
//	fmt.Printf("For more information, see: %s\n", urls.Troubleshooting)
package urls
