package main

import "github.com/fivexl/terraform-aws-ssl-checker/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
