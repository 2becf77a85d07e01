// Fleetop - EC2 and S3 convenience tooling.
package main

func main() {
	Execute()
}
