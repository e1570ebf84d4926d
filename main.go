// Command newspulse runs the news acquisition and enrichment service.
package main

import "github.com/newspulse/newspulse/cmd"

func main() {
	cmd.Execute()
}
