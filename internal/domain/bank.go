package domain

// DefaultQuizID identifies the built-in general knowledge quiz.
const DefaultQuizID = "royale"

// DefaultQuiz returns the built-in ten question bank.
func DefaultQuiz() Quiz {
	return Quiz{
		ID: DefaultQuizID,
		Questions: []Question{
			{Prompt: "What is the capital of France?", Options: []string{"Berlin", "Madrid", "Paris", "Rome"}, Answer: 2},
			{Prompt: `Who wrote the play "Romeo and Juliet"?`, Options: []string{"Charles Dickens", "William Shakespeare", "Jane Austen", "Mark Twain"}, Answer: 1},
			{Prompt: "Which planet is known as the Red Planet?", Options: []string{"Earth", "Mars", "Jupiter", "Venus"}, Answer: 1},
			{Prompt: "In what year did the Titanic sink?", Options: []string{"1905", "1912", "1918", "1920"}, Answer: 1},
			{Prompt: "What is the largest mammal?", Options: []string{"Elephant", "Blue Whale", "Giraffe", "Hippopotamus"}, Answer: 1},
			{Prompt: "Who painted the Mona Lisa?", Options: []string{"Pablo Picasso", "Leonardo da Vinci", "Vincent van Gogh", "Claude Monet"}, Answer: 1},
			{Prompt: `Which element has the chemical symbol "O"?`, Options: []string{"Gold", "Oxygen", "Osmium", "Oganesson"}, Answer: 1},
			{Prompt: "What is the smallest prime number?", Options: []string{"0", "1", "2", "3"}, Answer: 2},
			{Prompt: "In which continent is the Amazon Rainforest located?", Options: []string{"Africa", "South America", "Asia", "Australia"}, Answer: 1},
			{Prompt: "What gas do plants absorb from the atmosphere?", Options: []string{"Oxygen", "Nitrogen", "Carbon dioxide", "Hydrogen"}, Answer: 2},
		},
	}
}
