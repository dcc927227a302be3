// Command membist runs memory built-in self-test benchmarks in simulation.
package main

func main() {
	Execute()
}
