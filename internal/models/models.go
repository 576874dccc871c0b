// Package models declares the book distribution tables.
package models

import (
	"fmt"

	"github.com/LadyAlena/sql-homeworks-6/pkg/registry"
)

// Publisher is a company that publishes books.
type Publisher struct {
	ID    int    `po:"id,primaryKey,serial"`
	Name  string `po:"name,text,notNull"`
	Books []Book `po:"-,hasMany,foreignKey(publisher_id),references(id)"`
}

// Book is a title released by exactly one publisher.
type Book struct {
	ID          int        `po:"id,primaryKey,serial"`
	Title       string     `po:"title,text,notNull"`
	PublisherID int        `po:"publisher_id,integer,notNull,fk(publisher.id)"`
	Publisher   *Publisher `po:"-,belongsTo,foreignKey(publisher_id),references(id)"`
	Stocks      []Stock    `po:"-,hasMany,foreignKey(book_id),references(id)"`
}

// Shop is a retail outlet.
type Shop struct {
	ID     int     `po:"id,primaryKey,serial"`
	Name   string  `po:"name,text,notNull"`
	Stocks []Stock `po:"-,hasMany,foreignKey(shop_id),references(id)"`
}

// Stock is the quantity of one book held by one shop. The same (book, shop)
// pair may appear more than once.
type Stock struct {
	ID     int    `po:"id,primaryKey,serial"`
	BookID int    `po:"book_id,integer,notNull,fk(book.id)"`
	ShopID int    `po:"shop_id,integer,notNull,fk(shop.id)"`
	Count  int    `po:"count,integer,notNull"`
	Book   *Book  `po:"-,belongsTo,foreignKey(book_id),references(id)"`
	Shop   *Shop  `po:"-,belongsTo,foreignKey(shop_id),references(id)"`
	Sales  []Sale `po:"-,hasMany,foreignKey(stock_id),references(id)"`
}

// Sale records units sold out of one stock entry. Price and date are kept as
// display text, e.g. "3 $" and "2021-7-14".
type Sale struct {
	ID      int    `po:"id,primaryKey,serial"`
	Price   string `po:"price,text,notNull"`
	Date    string `po:"sale_date,text,notNull"`
	StockID int    `po:"stock_id,integer,notNull,fk(stock.id)"`
	Count   int    `po:"count,integer,notNull"`
	Stock   *Stock `po:"-,belongsTo,foreignKey(stock_id),references(id)"`
}

// Ordered lists the models in creation order: every table comes after the
// tables it references. Dropping runs in reverse.
var Ordered = []any{
	Publisher{},
	Book{},
	Shop{},
	Stock{},
	Sale{},
}

// RegisterAll registers every model with reg in creation order.
func RegisterAll(reg *registry.Registry) error {
	for _, model := range Ordered {
		if err := reg.Register(model); err != nil {
			return fmt.Errorf("register %T: %w", model, err)
		}
	}
	return nil
}

// NewRegistry returns a registry holding every model.
func NewRegistry() (*registry.Registry, error) {
	reg := registry.NewRegistry()
	if err := RegisterAll(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
