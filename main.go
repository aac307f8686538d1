package main

import "gym-checkin-backend/cmd"

func main() {
	cmd.Run()
}
