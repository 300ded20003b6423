package pipeline

// olistSchema is the fixed textual description of the relational schema fed to
// the SQL-generation prompt. Table and column names mirror the Olist public
// dataset.
const olistSchema = `
-- Dataset Olist E-Commerce Brasil
-- Schema completo para análise de dados de e-commerce

-- Tabela de Tradução de Categorias
CREATE TABLE product_category_name_translation (
  product_category_name VARCHAR(100) PRIMARY KEY,
  product_category_name_english VARCHAR(100) NOT NULL
);

-- Tabela de Clientes
CREATE TABLE olist_customers (
  customer_id VARCHAR(50) PRIMARY KEY,
  customer_unique_id VARCHAR(50) NOT NULL,
  customer_zip_code_prefix VARCHAR(10) NOT NULL,
  customer_city VARCHAR(100) NOT NULL,
  customer_state VARCHAR(2) NOT NULL
);

-- Tabela de Vendedores
CREATE TABLE olist_sellers (
  seller_id VARCHAR(50) PRIMARY KEY,
  seller_zip_code_prefix VARCHAR(10) NOT NULL,
  seller_city VARCHAR(100) NOT NULL,
  seller_state VARCHAR(2) NOT NULL
);

-- Tabela de Produtos
CREATE TABLE olist_products (
  product_id VARCHAR(50) PRIMARY KEY,
  product_category_name VARCHAR(100),
  product_name_lenght INTEGER,
  product_description_lenght INTEGER,
  product_photos_qty INTEGER,
  product_weight_g INTEGER,
  product_length_cm INTEGER,
  product_height_cm INTEGER,
  product_width_cm INTEGER
);

-- Tabela de Pedidos
CREATE TABLE olist_orders (
  order_id VARCHAR(50) PRIMARY KEY,
  customer_id VARCHAR(50) NOT NULL,
  order_status VARCHAR(20) NOT NULL,
  order_purchase_timestamp TIMESTAMP NOT NULL,
  order_approved_at TIMESTAMP,
  order_delivered_carrier_date TIMESTAMP,
  order_delivered_customer_date TIMESTAMP,
  order_estimated_delivery_date TIMESTAMP
);

-- Tabela de Itens do Pedido
CREATE TABLE olist_order_items (
  order_id VARCHAR(50) NOT NULL,
  order_item_id INTEGER NOT NULL,
  product_id VARCHAR(50) NOT NULL,
  seller_id VARCHAR(50) NOT NULL,
  shipping_limit_date TIMESTAMP NOT NULL,
  price DECIMAL(10, 2) NOT NULL,
  freight_value DECIMAL(10, 2) NOT NULL,
  PRIMARY KEY (order_id, order_item_id)
);

-- Tabela de Pagamentos
CREATE TABLE olist_order_payments (
  order_id VARCHAR(50) NOT NULL,
  payment_sequential INTEGER NOT NULL,
  payment_type VARCHAR(30) NOT NULL,
  payment_installments INTEGER NOT NULL,
  payment_value DECIMAL(10, 2) NOT NULL,
  PRIMARY KEY (order_id, payment_sequential)
);

-- Tabela de Avaliações
CREATE TABLE olist_order_reviews (
  review_id VARCHAR(50) PRIMARY KEY,
  order_id VARCHAR(50) NOT NULL,
  review_score INTEGER NOT NULL,
  review_comment_title TEXT,
  review_comment_message TEXT,
  review_creation_date TIMESTAMP NOT NULL,
  review_answer_timestamp TIMESTAMP
);

-- Tabela de Geolocalização
CREATE TABLE olist_geolocation (
  id SERIAL PRIMARY KEY,
  geolocation_zip_code_prefix VARCHAR(10) NOT NULL,
  geolocation_lat DECIMAL(10, 8) NOT NULL,
  geolocation_lng DECIMAL(11, 8) NOT NULL,
  geolocation_city VARCHAR(100) NOT NULL,
  geolocation_state VARCHAR(2) NOT NULL
);

-- Principais campos para consultas:
-- Produtos: product_id, product_category_name, dimensões, peso
-- Clientes: customer_id, customer_city, customer_state
-- Pedidos: order_id, order_status, order_purchase_timestamp
-- Itens: price, freight_value, seller_id
-- Pagamentos: payment_type, payment_value, payment_installments
-- Avaliações: review_score, review_comment_message`
