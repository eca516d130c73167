package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/appengine-prune/pkg/domain/errors"
)

// confirm asks the user to accept a low keep count. Only "y" proceeds.
func confirm(in io.Reader, out io.Writer, keep int) error {
	fmt.Fprintf(out, "You're keeping only %d versions. Are you sure you know what you are doing? (y/n) ", keep)
	scanner := bufio.NewScanner(in)
	scanner.Scan()
	response := strings.TrimRight(scanner.Text(), "\r")
	if response != "y" {
		return errors.Usage("aborted: keeping only %d versions was not confirmed", keep)
	}
	return nil
}
