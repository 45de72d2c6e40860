package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
)

// The bootstrap dataset: a small book catalog with fixed seed rows, enough
// to exercise every tool against a fresh gateway.
var sampleSchema = []string{
	`CREATE TABLE authors (
		author_id  INTEGER PRIMARY KEY,
		name       VARCHAR(100) NOT NULL,
		birth_year INTEGER,
		country    VARCHAR(50)
	)`,
	`CREATE TABLE books (
		book_id          INTEGER PRIMARY KEY,
		title            VARCHAR(200) NOT NULL,
		author_id        INTEGER      NOT NULL,
		publication_year INTEGER,
		genre            VARCHAR(50),
		price            DECIMAL(10, 2),
		FOREIGN KEY (author_id) REFERENCES authors (author_id)
	)`,
	`CREATE TABLE reviews (
		review_id     INTEGER PRIMARY KEY,
		book_id       INTEGER NOT NULL,
		reviewer_name VARCHAR(100),
		rating        INTEGER CHECK (rating BETWEEN 1 AND 5),
		review_text   TEXT,
		review_date   DATE,
		FOREIGN KEY (book_id) REFERENCES books (book_id)
	)`,
}

var sampleAuthors = [][]any{
	{1, "Jane Austen", 1775, "United Kingdom"},
	{2, "George Orwell", 1903, "United Kingdom"},
	{3, "Gabriel García Márquez", 1927, "Colombia"},
	{4, "Haruki Murakami", 1949, "Japan"},
	{5, "Chimamanda Ngozi Adichie", 1977, "Nigeria"},
}

var sampleBooks = [][]any{
	{1, "Pride and Prejudice", 1, 1813, "Classic", 12.99},
	{2, "1984", 2, 1949, "Dystopian", 14.50},
	{3, "One Hundred Years of Solitude", 3, 1967, "Magical Realism", 15.75},
	{4, "Norwegian Wood", 4, 1987, "Fiction", 13.25},
	{5, "Half of a Yellow Sun", 5, 2006, "Historical Fiction", 16.00},
	{6, "Sense and Sensibility", 1, 1811, "Classic", 11.99},
	{7, "Animal Farm", 2, 1945, "Political Satire", 10.50},
	{8, "Kafka on the Shore", 4, 2002, "Magical Realism", 14.75},
}

var sampleReviews = [][]any{
	{1, 1, "John Smith", 5, "A timeless classic that still resonates today.", "2020-05-15"},
	{2, 1, "Emily Johnson", 4, "Beautifully written, but pacing is a bit slow.", "2021-02-10"},
	{3, 2, "Michael Brown", 5, "Disturbing and prophetic. A must-read.", "2019-11-20"},
	{4, 3, "Sarah Davis", 5, "Breathtaking prose and storytelling.", "2020-08-05"},
	{5, 4, "David Wilson", 4, "Murakami at his best. Haunting and beautiful.", "2021-01-30"},
	{6, 5, "Lisa Anderson", 5, "Powerful and moving historical narrative.", "2020-07-22"},
	{7, 2, "Robert Thomas", 3, "Interesting concepts but found it depressing.", "2020-12-18"},
	{8, 7, "Jennifer Lee", 4, "Brilliant allegory. Short but impactful.", "2021-03-05"},
	{9, 8, "Kevin Chen", 5, "A mesmerizing journey into magical realism.", "2020-09-12"},
	{10, 6, "Amanda Martin", 4, "A delightful read from a master novelist.", "2021-04-20"},
}

// createSampleDatabase materializes the bootstrap dataset at path, replacing
// any leftover file first.
func createSampleDatabase(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale sample database: %w", err)
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("open sample database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	for _, statement := range sampleSchema {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("create sample schema: %w", err)
		}
	}

	inserts := []struct {
		sql  string
		rows [][]any
	}{
		{"INSERT INTO authors (author_id, name, birth_year, country) VALUES (?, ?, ?, ?)", sampleAuthors},
		{"INSERT INTO books (book_id, title, author_id, publication_year, genre, price) VALUES (?, ?, ?, ?, ?, ?)", sampleBooks},
		{"INSERT INTO reviews (review_id, book_id, reviewer_name, rating, review_text, review_date) VALUES (?, ?, ?, ?, ?, ?)", sampleReviews},
	}
	for _, batch := range inserts {
		for _, row := range batch.rows {
			if _, err := db.ExecContext(ctx, batch.sql, row...); err != nil {
				return fmt.Errorf("seed sample data: %w", err)
			}
		}
	}
	return nil
}
